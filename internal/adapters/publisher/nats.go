package publisher

import (
	"context"
	"dynamic-route-service/internal/domain"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	NATSSetConnected(connected bool)
}

// NATSPublisher emits solved plans and status updates as JSON.
// Subjects: <prefix>.solved.<requestID> and <prefix>.status.<requestID>.
type NATSPublisher struct {
	nc      *nats.Conn
	prefix  string
	metrics PublisherMetrics
}

func NewNATSPublisher(url, prefix string, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("dynamic-route-service"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Info().Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Info().Msg("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %q: %w", url, err)
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, prefix: subjectToken(prefix), metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

type VisitMessage struct {
	StopID         string  `json:"stopId"`
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	SegmentKm      float64 `json:"segmentKm"`
	Traffic        string  `json:"traffic"`
	ElapsedMinutes float64 `json:"elapsedMinutes"`
}

type RouteMessage struct {
	VehicleID       int            `json:"vehicleId"`
	DistanceKm      float64        `json:"distanceKm"`
	DurationMinutes float64        `json:"durationMinutes"`
	Visits          []VisitMessage `json:"visits"`
}

type SolvedMessage struct {
	RequestID       string         `json:"requestId"`
	SolvedAt        time.Time      `json:"solvedAt"`
	Weather         string         `json:"weather"`
	TotalDistanceKm float64        `json:"totalDistanceKm"`
	Routes          []RouteMessage `json:"routes"`
}

type StatusMessage struct {
	RequestID      string    `json:"requestId"`
	StopID         string    `json:"stopId"`
	Status         string    `json:"status"`
	RecordedAt     time.Time `json:"recordedAt"`
	TransactionRef string    `json:"transactionRef"`
}

func NewSolvedMessage(s *domain.Solution) SolvedMessage {
	msg := SolvedMessage{
		RequestID:       s.RequestID,
		SolvedAt:        s.SolvedAt,
		Weather:         string(s.Weather.Condition),
		TotalDistanceKm: s.TotalDistanceKm,
		Routes:          make([]RouteMessage, 0, len(s.Routes)),
	}
	for _, r := range s.Routes {
		rm := RouteMessage{
			VehicleID:       r.VehicleID,
			DistanceKm:      r.DistanceKm,
			DurationMinutes: r.DurationMinutes,
			Visits:          make([]VisitMessage, 0, len(r.Visits)),
		}
		for _, v := range r.Visits {
			rm.Visits = append(rm.Visits, VisitMessage{
				StopID:         v.StopID,
				Name:           v.Name,
				Lat:            v.Coordinates.Lat,
				Lon:            v.Coordinates.Lon,
				SegmentKm:      v.SegmentDistanceKm,
				Traffic:        string(v.Traffic),
				ElapsedMinutes: v.ElapsedMinutes,
			})
		}
		msg.Routes = append(msg.Routes, rm)
	}
	return msg
}

func (p *NATSPublisher) PublishSolution(ctx context.Context, s *domain.Solution) error {
	return p.publish(SolvedSubject(p.prefix, s.RequestID), NewSolvedMessage(s))
}

func (p *NATSPublisher) PublishStatus(ctx context.Context, e domain.StatusEntry) error {
	return p.publish(StatusSubject(p.prefix, e.RequestID), StatusMessage{
		RequestID:      e.RequestID,
		StopID:         e.StopID,
		Status:         string(e.Status),
		RecordedAt:     e.RecordedAt,
		TransactionRef: e.TransactionRef,
	})
}

func (p *NATSPublisher) publish(subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("publish %s: encode: %w", subject, err)
	}
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func SolvedSubject(prefix, requestID string) string {
	return fmt.Sprintf("%s.solved.%s", prefix, subjectToken(requestID))
}

func StatusSubject(prefix, requestID string) string {
	return fmt.Sprintf("%s.status.%s", prefix, subjectToken(requestID))
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}

// NopPublisher discards events. Used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishSolution(context.Context, *domain.Solution) error { return nil }
func (NopPublisher) PublishStatus(context.Context, domain.StatusEntry) error { return nil }
