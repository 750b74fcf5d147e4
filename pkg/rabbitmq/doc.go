// Package rabbitmq publishes domain events to a RabbitMQ topic exchange.
//
// The routing key of each message is the event type, so consumers bind
// queues with patterns such as "stock.*". The body is the JSON event and
// the tenant travels in the message headers.
//
//	conn, err := rabbitmq.Dial(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	ch, err := conn.Channel()
//	if err != nil {
//		return err
//	}
//	pub, err := rabbitmq.NewPublisher(ch, cfg)
package rabbitmq
