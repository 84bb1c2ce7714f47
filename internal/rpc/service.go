// Package rpc describes the TrailKeeper gRPC service. Every method is unary
// and exchanges google.protobuf.Struct messages, so the client and server
// share this descriptor instead of generated stubs.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "trailkeeper.v1.TrailKeeper"

const (
	MethodPing           = "Ping"
	MethodRegister       = "Register"
	MethodLogin          = "Login"
	MethodMergeDocument  = "MergeDocument"
	MethodListCollection = "ListCollection"
	MethodSemanticSearch = "SemanticSearch"
	MethodPresignPicture = "PresignPicture"
)

// FullMethod returns the "/service/method" name used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Server is implemented by the remote document store.
type Server interface {
	Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	MergeDocument(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListCollection(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	SemanticSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	PresignPicture(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type call func(Server, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn call) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(Server), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(Server), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc is registered with grpc.Server by RegisterServer.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, Server.Ping),
		unary(MethodRegister, Server.Register),
		unary(MethodLogin, Server.Login),
		unary(MethodMergeDocument, Server.MergeDocument),
		unary(MethodListCollection, Server.ListCollection),
		unary(MethodSemanticSearch, Server.SemanticSearch),
		unary(MethodPresignPicture, Server.PresignPicture),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "trailkeeper/v1/trailkeeper.proto",
}

func RegisterServer(r grpc.ServiceRegistrar, srv Server) {
	r.RegisterService(&ServiceDesc, srv)
}

// Invoker is the client half: it converts plain maps to Struct messages.
type Invoker struct {
	cc grpc.ClientConnInterface
}

func NewInvoker(cc grpc.ClientConnInterface) *Invoker {
	return &Invoker{cc: cc}
}

// Call invokes method with in as the request body and returns the decoded
// response body.
func (c *Invoker) Call(ctx context.Context, method string, in map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	req, err := NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
