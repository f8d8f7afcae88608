package rabbitmq

import (
	"testing"

	"github.com/Pezu/servio/internal/interfaces"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoutingKeyAndTopicAreInverse(t *testing.T) {
	id := uuid.MustParse("0b3d5f43-6f0e-4a43-9b55-0a8a6b1f2d10")
	topic := interfaces.RegistrationTopic(id)

	key := RoutingKey(topic)
	assert.Equal(t, "registration.0b3d5f43-6f0e-4a43-9b55-0a8a6b1f2d10", key)
	assert.Equal(t, topic, Topic(key))

	assert.Equal(t, "orders", RoutingKey(interfaces.StaffTopic))
}

func TestCancellationQueueName(t *testing.T) {
	assert.Equal(t, "order_item_cancel.audit", CancellationQueue("order_item_cancel"))
}
