package grpc

import (
	"context"
	"strconv"

	grpclib "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "enginemonitor.v1.ReadingsService"

// ReadingsServer is the server API for ReadingsService. Requests and
// responses are google.protobuf.Struct messages carrying the JSON shape
// used by the HTTP API.
type ReadingsServer interface {
	AddReading(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Query(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Generate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ships(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ReadingsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(method string, call unaryCall) grpclib.MethodDesc {
	return grpclib.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ReadingsServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ReadingsServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ReadingsServiceDesc describes ReadingsService for grpc.Server.RegisterService
var ReadingsServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReadingsServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("AddReading", ReadingsServer.AddReading),
		unary("Query", ReadingsServer.Query),
		unary("Generate", ReadingsServer.Generate),
		unary("ExportReport", ReadingsServer.ExportReport),
		unary("Ships", ReadingsServer.Ships),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "enginemonitor/v1/readings.proto",
}

// RegisterReadingsServer registers srv on s
func RegisterReadingsServer(s grpclib.ServiceRegistrar, srv ReadingsServer) {
	s.RegisterService(&ReadingsServiceDesc, srv)
}

// Client is a thin client for ReadingsService
type Client struct {
	cc grpclib.ClientConnInterface
}

// NewClient wraps an established connection
func NewClient(cc grpclib.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddReading sends one reading in its wire shape
func (c *Client) AddReading(ctx context.Context, reading map[string]any) (*structpb.Struct, error) {
	return c.invoke(ctx, "AddReading", reading)
}

// Query fetches the series for ships and engine
func (c *Client) Query(ctx context.Context, ships []string, engine string) (*structpb.Struct, error) {
	return c.invoke(ctx, "Query", filterRequest(ships, engine))
}

// Generate asks the server to append a synthetic batch; an empty start
// means the batch ends today. The seed is sent as a string since Struct
// numbers are float64.
func (c *Client) Generate(ctx context.Context, seed int64, start string, days int) (*structpb.Struct, error) {
	return c.invoke(ctx, "Generate", map[string]any{
		"seed":  strconv.FormatInt(seed, 10),
		"start": start,
		"days":  days,
	})
}

// ExportReport asks the server to write a report and returns its response
func (c *Client) ExportReport(ctx context.Context, ships []string, engine string) (*structpb.Struct, error) {
	return c.invoke(ctx, "ExportReport", filterRequest(ships, engine))
}

// Ships lists ships present in the store
func (c *Client) Ships(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "Ships", map[string]any{})
}

func filterRequest(ships []string, engine string) map[string]any {
	list := make([]any, len(ships))
	for i, s := range ships {
		list[i] = s
	}
	return map[string]any{"ships": list, "engine": engine}
}
