package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Config locates the RabbitMQ server, mirroring the rabbitmq section of the
// bench startup configuration.
type Config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	VHost    string `toml:"vhost"`
	Exchange string `toml:"exchange"`
}

// URL returns the AMQP URL of the configured server.
func (c Config) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s", c.Username, c.Password, c.Host, c.Port, c.VHost)
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5672
	}
	if c.VHost == "" {
		c.VHost = "/"
	}
	if c.Exchange == "" {
		c.Exchange = "hybridtestbench"
	}
	return c
}

// Handler consumes one decoded message.
type Handler func(Message)

type subscription struct {
	msg Message
	fn  Handler
}

// Client is a thin wrapper over an AMQP connection bound to the bench topic
// exchange: declare transient queues, subscribe, publish.
//
// Handlers run one at a time on the goroutine that calls Consume, matching
// the single-threaded event dispatch the scene relies on.
type Client struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	inbox    chan subscription
	done     chan struct{}
	closed   sync.Once
	log      *slog.Logger
}

// Dial connects to the server and declares the topic exchange.
func Dial(cfg Config, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.withDefaults()
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("bus dial %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("bus channel: %w", err)
	}
	err = ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("bus exchange declare %q: %w", cfg.Exchange, err)
	}
	return &Client{
		conn:     conn,
		ch:       ch,
		exchange: cfg.Exchange,
		inbox:    make(chan subscription, 64),
		done:     make(chan struct{}),
		log:      log,
	}, nil
}

// DeclareLocalQueue declares a transient queue bound to routingKey and
// returns its name, for polling with GetMessage.
func (c *Client) DeclareLocalQueue(routingKey string) (string, error) {
	q, err := c.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return "", fmt.Errorf("bus queue declare: %w", err)
	}
	if err := c.ch.QueueBind(q.Name, routingKey, c.exchange, false, nil); err != nil {
		return "", fmt.Errorf("bus queue bind %q: %w", routingKey, err)
	}
	return q.Name, nil
}

// GetMessage polls a declared local queue. ok is false when the queue is
// empty.
func (c *Client) GetMessage(queue string) (msg Message, ok bool, err error) {
	d, ok, err := c.ch.Get(queue, true)
	if err != nil || !ok {
		return Message{}, false, err
	}
	msg, err = Decode(d.Body)
	if err != nil {
		return Message{}, false, err
	}
	return msg, true, nil
}

// Subscribe binds a transient queue to routingKey and registers fn for its
// messages. fn is not called until Consume runs.
func (c *Client) Subscribe(routingKey string, fn Handler) error {
	queue, err := c.DeclareLocalQueue(routingKey)
	if err != nil {
		return err
	}
	deliveries, err := c.ch.Consume(queue, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("bus consume %q: %w", routingKey, err)
	}
	go c.forward(deliveries, fn)
	return nil
}

// forward decodes deliveries into the inbox until the delivery channel
// closes or the client is closed. Without the done check a full inbox would
// strand the goroutine after Consume has returned.
func (c *Client) forward(deliveries <-chan amqp.Delivery, fn Handler) {
	for d := range deliveries {
		msg, err := Decode(d.Body)
		if err != nil {
			// Malformed payloads are dropped, not fatal.
			c.log.Warn("dropping malformed bus message",
				"routing_key", d.RoutingKey, "err", err)
			continue
		}
		select {
		case c.inbox <- subscription{msg: msg, fn: fn}:
		case <-c.done:
			return
		}
	}
}

// Consume dispatches subscribed messages on the calling goroutine until the
// context is canceled.
func (c *Client) Consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-c.inbox:
			s.fn(s.msg)
		}
	}
}

// Publish sends a message to the exchange under routingKey.
func (c *Client) Publish(ctx context.Context, routingKey string, m Message) error {
	body, err := Encode(m)
	if err != nil {
		return err
	}
	err = c.ch.PublishWithContext(ctx, c.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("bus publish %q: %w", routingKey, err)
	}
	return nil
}

// Close releases the forwarding goroutines and tears down the channel and
// connection.
func (c *Client) Close() error {
	c.closed.Do(func() { close(c.done) })
	if err := c.ch.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
