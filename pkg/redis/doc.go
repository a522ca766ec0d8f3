// Package redis connects the billing engine to the Redis instance backing
// provider-event deduplication: a retrying Connect built on go-redis, an
// env-driven Config, and a healthcheck closure.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		panic(err)
//	}
//	defer client.Close()
//
//	dedup := billing.NewRedisDeduplicator(client, dedupCfg)
package redis
