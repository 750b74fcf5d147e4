package kafka

import "errors"

var (
	ErrNoBrokers   = errors.New("kafka: no brokers configured")
	ErrNoTopic     = errors.New("kafka: no topic configured")
	ErrEncode      = errors.New("kafka: failed to encode event")
	ErrDecode      = errors.New("kafka: failed to decode event")
	ErrWriteFailed = errors.New("kafka: failed to write messages")
)
