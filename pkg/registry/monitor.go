package registry

import (
	"github.com/Sumatoshi-tech/devindex/pkg/bheap"
	"github.com/Sumatoshi-tech/devindex/pkg/device"
)

// Notification is a pending message report for one device.
type Notification struct {
	MessageCount uint64
	Device       device.Descriptor
}

func compareNotifications(a, b Notification) int {
	switch {
	case a.MessageCount < b.MessageCount:
		return -1
	case a.MessageCount > b.MessageCount:
		return 1
	default:
		return 0
	}
}

// MessageMonitor hands out devices in order of pending message count,
// busiest first.
type MessageMonitor struct {
	queue *bheap.Heap[Notification]
}

// NewMessageMonitor creates an empty monitor.
func NewMessageMonitor() *MessageMonitor {
	return &MessageMonitor{queue: bheap.New(compareNotifications)}
}

// Post queues a notification.
func (m *MessageMonitor) Post(n Notification) {
	m.queue.Push(n)
}

// Next removes and returns the notification with the highest message
// count.
func (m *MessageMonitor) Next() (Notification, bool) {
	return m.queue.Pop()
}

// Pending returns the number of queued notifications.
func (m *MessageMonitor) Pending() int {
	return m.queue.Len()
}
