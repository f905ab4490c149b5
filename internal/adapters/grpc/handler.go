package grpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/quentinrf/engine-monitor/internal/domain"
	"github.com/quentinrf/engine-monitor/internal/ports"
)

// ReadingsServiceHandler implements the gRPC ReadingsService
type ReadingsServiceHandler struct {
	service *ports.ReadingsService
}

// NewReadingsServiceHandler creates a new gRPC handler
func NewReadingsServiceHandler(service *ports.ReadingsService) *ReadingsServiceHandler {
	return &ReadingsServiceHandler{service: service}
}

// AddReading records one manually entered reading
func (h *ReadingsServiceHandler) AddReading(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	reading, err := readingFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	log.Info().
		Str("ship", reading.Ship).
		Str("engine", reading.EngineName).
		Msg("AddReading called")

	saved, err := h.service.AddReading(ctx, reading)
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]any{"reading": readingToMap(saved)})
}

// Query returns the filtered series, newest first, with statistics
func (h *ReadingsServiceHandler) Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := filterFromStruct(req)
	log.Info().
		Strs("ships", f.Ships).
		Str("engine", f.Engine).
		Msg("Query called")

	result, err := h.service.Query(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}

	readings := make([]any, len(result.Readings))
	for i, r := range result.Readings {
		readings[i] = readingToMap(r)
	}

	return structpb.NewStruct(map[string]any{
		"readings": readings,
		"stats":    statsToMap(result.Stats),
	})
}

// Generate appends a synthetic batch
func (h *ReadingsServiceHandler) Generate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	seed, err := seedFromValue(fields["seed"])
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	days := int(fields["days"].GetNumberValue())

	start := time.Now().AddDate(0, 0, -(days - 1))
	if raw := fields["start"].GetStringValue(); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		start = d
	}

	log.Info().Int64("seed", seed).Int("days", days).Msg("Generate called")

	n, err := h.service.Generate(ctx, seed, start, days)
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]any{
		"generated": n,
		"seed":      strconv.FormatInt(seed, 10),
	})
}

// ExportReport writes the report on the server and returns its path
func (h *ReadingsServiceHandler) ExportReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path, err := h.service.ExportReport(ctx, filterFromStruct(req))
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]any{"path": path})
}

// Ships lists ships present in the store
func (h *ReadingsServiceHandler) Ships(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ships, err := h.service.Ships(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	list := make([]any, len(ships))
	for i, s := range ships {
		list[i] = s
	}
	return structpb.NewStruct(map[string]any{"ships": list})
}

// UnaryRecovery converts a handler panic into codes.Internal so one bad
// request cannot stop the server
func UnaryRecovery() grpclib.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (resp any, err error) {
		defer func() {
			if p := recover(); p != nil {
				log.Error().
					Str("method", info.FullMethod).
					Interface("panic", p).
					Msg("recovered from handler panic")
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// toStatus maps domain errors to gRPC status codes
func toStatus(err error) error {
	var (
		schemaErr *domain.SchemaError
		parseErr  *domain.ParseError
	)

	switch {
	case errors.As(err, &schemaErr), errors.As(err, &parseErr),
		errors.Is(err, domain.ErrInvalidReading), errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidDays):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		return status.Error(codes.Internal, "storage failure")
	}
}

// seedFromValue reads the seed as a decimal string, which keeps all 64
// bits; a plain number is accepted up to 2^53
func seedFromValue(v *structpb.Value) (int64, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		seed, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seed: %w", err)
		}
		return seed, nil
	case *structpb.Value_NumberValue:
		if math.Abs(k.NumberValue) > 1<<53 || k.NumberValue != math.Trunc(k.NumberValue) {
			return 0, fmt.Errorf("seed %v is not exactly representable, send it as a string", k.NumberValue)
		}
		return int64(k.NumberValue), nil
	default:
		return 0, nil
	}
}

func filterFromStruct(s *structpb.Struct) domain.Filter {
	fields := s.GetFields()
	f := domain.Filter{Engine: fields["engine"].GetStringValue()}

	if ship := fields["ship"].GetStringValue(); ship != "" {
		f.Ships = append(f.Ships, ship)
	}
	for _, v := range fields["ships"].GetListValue().GetValues() {
		f.Ships = append(f.Ships, v.GetStringValue())
	}
	return f
}

// readingToMap converts the domain model to its wire shape
func readingToMap(r domain.EngineReading) map[string]any {
	return map[string]any{
		"date":            r.Date.Format(domain.DateLayout),
		"ship":            r.Ship,
		"engine_name":     r.EngineName,
		"fuel_rate":       r.FuelRate,
		"lubricant_rate":  r.LubricantRate,
		"rpm":             r.RPM,
		"operating_hours": r.OperatingHours,
		"engine_temp":     r.EngineTemp,
		"oil_pressure":    r.OilPressure,
		"load_pct":        r.LoadPct,
		"vibration":       r.Vibration,
		"alarm":           r.Alarm,
		"abnormal":        r.IsAbnormal(),
	}
}

// readingFromStruct is the inverse of readingToMap
func readingFromStruct(s *structpb.Struct) (domain.EngineReading, error) {
	fields := s.GetFields()
	num := func(key string) float64 { return fields[key].GetNumberValue() }

	date, err := domain.ParseDate(fields["date"].GetStringValue())
	if err != nil {
		return domain.EngineReading{}, fmt.Errorf("invalid date: %w", err)
	}

	rpm, err := domain.IntegralValue(num("rpm"))
	if err != nil {
		return domain.EngineReading{}, fmt.Errorf("invalid rpm: %w", err)
	}

	return domain.EngineReading{
		Date:           date,
		Ship:           fields["ship"].GetStringValue(),
		EngineName:     fields["engine_name"].GetStringValue(),
		FuelRate:       num("fuel_rate"),
		LubricantRate:  num("lubricant_rate"),
		RPM:            rpm,
		OperatingHours: num("operating_hours"),
		EngineTemp:     num("engine_temp"),
		OilPressure:    num("oil_pressure"),
		LoadPct:        num("load_pct"),
		Vibration:      num("vibration"),
		Alarm:          fields["alarm"].GetStringValue(),
	}, nil
}

func statsToMap(s domain.Statistics) map[string]any {
	summary := func(m domain.Summary) map[string]any {
		return map[string]any{"average": m.Average, "min": m.Min, "max": m.Max}
	}
	return map[string]any{
		"count":        s.Count,
		"abnormal":     s.Abnormal,
		"fuel_rate":    summary(s.FuelRate),
		"rpm":          summary(s.RPM),
		"engine_temp":  summary(s.EngineTemp),
		"oil_pressure": summary(s.OilPressure),
	}
}
