package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// shopmap.ShopDirectory is declared by hand over well-known protobuf types.

const (
	serviceName = "shopmap.ShopDirectory"

	ListShopsMethod = "/" + serviceName + "/ListShops"
	GetShopMethod   = "/" + serviceName + "/GetShop"
)

type ShopDirectoryServer interface {
	ListShops(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetShop(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
}

type ShopDirectoryClient interface {
	ListShops(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	GetShop(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type UnimplementedShopDirectoryServer struct{}

func (UnimplementedShopDirectoryServer) ListShops(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListShops not implemented")
}

func (UnimplementedShopDirectoryServer) GetShop(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetShop not implemented")
}

var ShopDirectoryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ShopDirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListShops",
			Handler:    listShopsHandler,
		},
		{
			MethodName: "GetShop",
			Handler:    getShopHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shopmap/directory.proto",
}

func RegisterShopDirectoryServer(s grpc.ServiceRegistrar, srv ShopDirectoryServer) {
	s.RegisterService(&ShopDirectoryServiceDesc, srv)
}

func listShopsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShopDirectoryServer).ListShops(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ListShopsMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShopDirectoryServer).ListShops(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getShopHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShopDirectoryServer).GetShop(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetShopMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShopDirectoryServer).GetShop(ctx, req.(*wrapperspb.UInt64Value))
	}
	return interceptor(ctx, in, info, handler)
}

type shopDirectoryClient struct {
	cc grpc.ClientConnInterface
}

func NewShopDirectoryClient(cc grpc.ClientConnInterface) ShopDirectoryClient {
	return &shopDirectoryClient{cc: cc}
}

func (c *shopDirectoryClient) ListShops(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListShopsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *shopDirectoryClient) GetShop(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetShopMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
