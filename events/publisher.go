// Package events optionally publishes periodic blinkpool stats snapshots
// to a RabbitMQ exchange, for operators who already have an AMQP-based
// monitoring pipeline. This is a monitoring sidecar: the pool works
// identically with no publisher ever started.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/blinkpool/blinkpool"
)

// StatsPublisher periodically marshals a DataSource's Metrics snapshot to
// JSON and publishes it to an AMQP exchange.
type StatsPublisher struct {
	ds       *blinkpool.DataSource
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewStatsPublisher dials amqpURL and declares a fanout exchange named
// exchange, following the usual connection-then-channel-then-declare
// AMQP setup sequence.
func NewStatsPublisher(ds *blinkpool.DataSource, amqpURL, exchange string, interval time.Duration) (*StatsPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("events: dialing amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: opening channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "fanout", false, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("events: declaring exchange: %w", err)
	}

	return &StatsPublisher{
		ds:       ds,
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start begins the publish loop on its own goroutine.
func (sp *StatsPublisher) Start() {
	go sp.loop()
	log.Printf("[events] stats publisher started, exchange=%s interval=%v", sp.exchange, sp.interval)
}

// Stop halts the publish loop and tears down the AMQP channel/connection.
func (sp *StatsPublisher) Stop() {
	close(sp.stop)
	<-sp.done
	sp.channel.Close()
	sp.conn.Close()
	log.Printf("[events] stats publisher stopped")
}

func (sp *StatsPublisher) loop() {
	defer close(sp.done)

	ticker := time.NewTicker(sp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sp.stop:
			return
		case <-ticker.C:
			sp.publishOnce()
		}
	}
}

func (sp *StatsPublisher) publishOnce() {
	body, err := json.Marshal(sp.ds.Metrics())
	if err != nil {
		log.Printf("[events] marshal stats: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = sp.channel.PublishWithContext(ctx, sp.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		log.Printf("[events] publish stats: %v", err)
	}
}
