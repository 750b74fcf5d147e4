// Package redelivery hands events that failed to publish after commit to an
// asynq queue and republishes them from a worker.
//
// The Enqueuer plugs into event.NewDeferred as its failure handler:
//
//	client := asynq.NewClient(redisOpt)
//	events := event.NewDeferred(pub, event.WithFailureHandler(redelivery.NewEnqueuer(client, cfg)))
//
// The worker side republishes through the same transport and lets asynq
// retry with backoff until the transport accepts the batch:
//
//	srv := asynq.NewServer(redisOpt, asynq.Config{Queues: map[string]int{cfg.Queue: 1}})
//	err := srv.Run(redelivery.NewMux(pub))
//
// Delivery is at least once. Consumers deduplicate on the event id.
package redelivery
