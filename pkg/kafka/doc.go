// Package kafka publishes domain events to Apache Kafka.
//
// Each event becomes one message keyed by its aggregate id, so all events of
// an aggregate land on the same partition and keep their order. The value is
// the JSON form of the event. Routing and tracing data travel as headers:
//
//	event_id, event_type, aggregate_type, tenant_id, correlation_id
//
// The publisher is a plain event.Publisher and is normally wrapped by
// event.NewDeferred so that nothing is sent before the unit of work commits.
//
//	var cfg kafka.Config
//	config.MustLoad(&cfg)
//
//	pub, err := kafka.NewPublisher(cfg, kafka.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer pub.Close()
//
//	events := event.NewDeferred(pub)
package kafka
