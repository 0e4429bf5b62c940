// Package redis connects the notification engine to Redis and provides
// the Lease used by processor instances to claim units of work.
//
// Connect retries until the server is reachable:
//
//	var cfg redis.Config
//	if err := env.Parse(&cfg); err != nil {
//	    panic(err)
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer client.Close()
//
// Lease implements a minimal SET NX PX lock with an owner-checked
// release, enough to keep concurrent processors from dispatching the same
// notification twice:
//
//	lease := redis.NewLease(client, "notifier")
//	ok, err := lease.Acquire(ctx, "notification:abc", 2*time.Minute)
package redis
