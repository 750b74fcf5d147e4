package rabbitmq

import "errors"

var (
	ErrEmptyURL         = errors.New("rabbitmq: empty connection url")
	ErrConnectionFailed = errors.New("rabbitmq: connection failed")
	ErrDeclareExchange  = errors.New("rabbitmq: failed to declare exchange")
	ErrEncode           = errors.New("rabbitmq: failed to encode event")
	ErrPublishFailed    = errors.New("rabbitmq: failed to publish")
)
