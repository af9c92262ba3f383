package rabbitmq

import (
	"context"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLogNotificationMessage(t *testing.T) {
	handle := LogNotificationMessage(zap.NewNop())

	err := handle(amqp.Delivery{RoutingKey: "notification.created", Body: []byte(`{"id":"n1","recipientId":"u1","type":"like"}`)})
	assert.NoError(t, err)

	err = handle(amqp.Delivery{Body: []byte("not json")})
	assert.Error(t, err)
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{log: zap.NewNop()}
	err := c.Publish(context.Background(), "notification.created", map[string]string{"id": "n1"})
	assert.Error(t, err)
	assert.Error(t, c.ConsumeNotificationEvents(func(amqp.Delivery) error { return nil }))
}
