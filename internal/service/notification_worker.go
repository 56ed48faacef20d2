package service

import (
	"encoding/json"
	"log"

	"beanleaf/internal/util"
	"beanleaf/internal/websocket"
)

// NotificationWorker consumes notification messages from RabbitMQ and
// pushes them to connected WebSocket clients.
type NotificationWorker struct {
	rabbitMQ *util.RabbitMQClient
	wsHub    *websocket.Hub
	stop     chan struct{}
}

func NewNotificationWorker(rabbitMQ *util.RabbitMQClient, wsHub *websocket.Hub) *NotificationWorker {
	return &NotificationWorker{
		rabbitMQ: rabbitMQ,
		wsHub:    wsHub,
		stop:     make(chan struct{}),
	}
}

// Start declares the queue topology and begins consuming.
func (w *NotificationWorker) Start() error {
	if w.rabbitMQ == nil {
		return nil
	}

	channel := w.rabbitMQ.GetChannel()
	if channel == nil {
		return nil
	}

	if err := channel.ExchangeDeclare(
		NotificationExchange,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	queue, err := channel.QueueDeclare(
		NotificationQueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	if err := channel.QueueBind(
		queue.Name,
		notificationRoutingKey,
		NotificationExchange,
		false,
		nil,
	); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		queue.Name,
		"notification_worker",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-w.stop:
				return
			case delivery, ok := <-msgs:
				if !ok {
					return
				}

				var msg NotificationMessage
				if err := json.Unmarshal(delivery.Body, &msg); err != nil {
					log.Printf("Dropping malformed notification message: %v", err)
					delivery.Nack(false, false)
					continue
				}

				w.wsHub.BroadcastToUser(msg.UserID, map[string]interface{}{
					"type":    msg.Type,
					"title":   msg.Title,
					"message": msg.Message,
					"data":    msg.Data,
				})
				delivery.Ack(false)
			}
		}
	}()

	return nil
}

// Stop signals the consumer loop to exit.
func (w *NotificationWorker) Stop() {
	close(w.stop)
}
