package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeatsChanged tells seat-map viewers to refetch a showtime.
type SeatsChanged struct {
	ShowtimeID int64    `json:"showtime_id"`
	SeatIDs    []string `json:"seat_ids"`
	TsUnix     int64    `json:"ts_unix"`
}

type SeatEvents struct {
	rdb     *redis.Client
	channel string
}

func NewSeatEvents(rdb *redis.Client) *SeatEvents {
	return &SeatEvents{rdb: rdb, channel: ChannelSeatsChanged()}
}

func (p *SeatEvents) PublishSeatsChanged(ctx context.Context, showtimeID int64, seatIDs []string) error {
	b, err := json.Marshal(SeatsChanged{
		ShowtimeID: showtimeID,
		SeatIDs:    seatIDs,
		TsUnix:     time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe blocks, calling handler for every change until ctx is done.
func (p *SeatEvents) Subscribe(ctx context.Context, handler func(ctx context.Context, ev SeatsChanged)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev SeatsChanged
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil && ev.ShowtimeID != 0 {
				handler(ctx, ev)
			}
		}
	}
}
