// Package proto describes the shortcuts gRPC service. Requests and responses
// are wrapperspb.StringValue messages so no generated code is needed.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "shortcuts.ShortcutService"

	CreateShortcutMethod  = "/" + ServiceName + "/CreateShortcut"
	ResolveShortcutMethod = "/" + ServiceName + "/ResolveShortcut"
)

// ShortcutServiceServer is the server API for ShortcutService.
type ShortcutServiceServer interface {
	// CreateShortcut takes a destination URL and returns the absolute short URL.
	CreateShortcut(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	// ResolveShortcut takes a key and returns its destination URL.
	ResolveShortcut(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// UnimplementedShortcutServiceServer can be embedded to have forward compatible implementations.
type UnimplementedShortcutServiceServer struct{}

func (UnimplementedShortcutServiceServer) CreateShortcut(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateShortcut not implemented")
}

func (UnimplementedShortcutServiceServer) ResolveShortcut(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method ResolveShortcut not implemented")
}

// RegisterShortcutServiceServer registers srv on s.
func RegisterShortcutServiceServer(s grpc.ServiceRegistrar, srv ShortcutServiceServer) {
	s.RegisterService(&shortcutServiceDesc, srv)
}

func createShortcutHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShortcutServiceServer).CreateShortcut(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CreateShortcutMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShortcutServiceServer).CreateShortcut(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func resolveShortcutHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShortcutServiceServer).ResolveShortcut(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ResolveShortcutMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShortcutServiceServer).ResolveShortcut(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var shortcutServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShortcutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateShortcut",
			Handler:    createShortcutHandler,
		},
		{
			MethodName: "ResolveShortcut",
			Handler:    resolveShortcutHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shortcuts.proto",
}

// ShortcutServiceClient is the client API for ShortcutService.
type ShortcutServiceClient interface {
	CreateShortcut(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	ResolveShortcut(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type shortcutServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewShortcutServiceClient returns a client that calls the service over cc.
func NewShortcutServiceClient(cc grpc.ClientConnInterface) ShortcutServiceClient {
	return &shortcutServiceClient{cc: cc}
}

func (c *shortcutServiceClient) CreateShortcut(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, CreateShortcutMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *shortcutServiceClient) ResolveShortcut(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, ResolveShortcutMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
