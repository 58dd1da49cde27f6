package kafka

import (
	"context"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/segmentio/kafka-go"
	"hash/fnv"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Handler harus return nil hanya jika proses sukses & boleh commit offset.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
	backoff time.Duration
	log     *logger.Logger
}

func NewConsumer(brokers []string, group string, topics []string, workers int, log *logger.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, backoff: 200 * time.Millisecond, log: log}
}

// workerFor pins every (topic, partition) to one worker, so offsets of a
// partition are handled and committed strictly in order.
func workerFor(m kafka.Message, workers int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(m.Topic))
	_, _ = h.Write([]byte(strconv.Itoa(m.Partition)))
	return int(h.Sum32() % uint32(workers))
}

// handleWithRetry retries m in place until the handler succeeds or ctx is
// done. It reports whether m may be committed.
func handleWithRetry(ctx context.Context, h Handler, m kafka.Message, backoff time.Duration, log *logger.Logger) bool {
	wait := backoff
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			return true
		}
		if log != nil {
			log.Error("kafka_handle_failed", string(m.Key), "handler failed, retrying", err,
				slog.String("topic", m.Topic), slog.Int("partition", m.Partition),
				slog.Int64("offset", m.Offset), slog.Int("attempt", attempt))
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		if wait < 10*time.Second {
			wait *= 2
		}
	}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	lanes := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan kafka.Message, 128)
		wg.Add(1)
		go func(jobs <-chan kafka.Message) {
			defer wg.Done()
			for m := range jobs {
				if !handleWithRetry(ctx, h, m, c.backoff, c.log) {
					// shutdown: offset tidak di-commit, pesan diulang oleh pemilik partisi berikutnya
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					c.log.Error("kafka_commit_failed", string(m.Key), "commit failed", err,
						slog.String("topic", m.Topic))
				}
			}
		}(lanes[i])
	}
	defer wg.Wait()
	defer func() {
		for _, l := range lanes {
			close(l)
		}
	}()

	// dispatcher loop
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			// kecilkan noise saat shutdown
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case lanes[workerFor(m, c.workers)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}
