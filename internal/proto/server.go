package proto

import (
	"context"
	"net"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/config"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/service"
)

type (
	ShopReader interface {
		ShopList(ctx context.Context, brand string) ([]service.ShopView, error)
		ShopGet(ctx context.Context, id uint64) (*service.ShopView, error)
	}

	ShopDirectoryServerImpl struct {
		UnimplementedShopDirectoryServer
		shops  ShopReader
		logger *zap.SugaredLogger
	}
)

func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, svc *service.General, logger *zap.SugaredLogger) *ShopDirectoryServerImpl {
	instance := NewShopDirectoryServer(svc, logger)

	grpcServer := grpc.NewServer()
	RegisterShopDirectoryServer(grpcServer, instance)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
			if err != nil {
				return err
			}
			logger.Infow("starting GRPC server", "listen", lis.Addr().String())
			go func() {
				if err := grpcServer.Serve(lis); err != nil {
					logger.Errorw("GRPC server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			grpcServer.GracefulStop()
			return nil
		},
	})

	return instance
}

func NewShopDirectoryServer(shops ShopReader, logger *zap.SugaredLogger) *ShopDirectoryServerImpl {
	return &ShopDirectoryServerImpl{
		shops:  shops,
		logger: logger,
	}
}

func (s *ShopDirectoryServerImpl) ListShops(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	views, err := s.shops.ShopList(ctx, "")
	if err != nil {
		return nil, s.toStatus(err)
	}

	values := make([]*structpb.Value, 0, len(views))
	for i := range views {
		item, err := shopStruct(&views[i])
		if err != nil {
			return nil, s.toStatus(err)
		}
		values = append(values, structpb.NewStructValue(item))
	}
	return &structpb.ListValue{Values: values}, nil
}

func (s *ShopDirectoryServerImpl) GetShop(ctx context.Context, request *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	view, err := s.shops.ShopGet(ctx, request.GetValue())
	if err != nil {
		return nil, s.toStatus(err)
	}
	item, err := shopStruct(view)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return item, nil
}

func (s *ShopDirectoryServerImpl) toStatus(err error) error {
	appErr := apperr.As(err)
	if appErr == nil {
		s.logger.Errorw("GRPC request failed", "error", err)
		return status.Error(codes.Internal, "internal server error")
	}

	code := codes.Internal
	switch appErr.Code() {
	case apperr.CodeNotFound:
		code = codes.NotFound
	case apperr.CodeBadRequest, apperr.CodeValidation:
		code = codes.InvalidArgument
	case apperr.CodeUnauthorized:
		code = codes.Unauthenticated
	default:
		s.logger.Errorw("GRPC request failed", "error", err)
	}
	return status.Error(code, appErr.Message())
}

// shopStruct mirrors the REST shop body, derived attributes included.
func shopStruct(view *service.ShopView) (*structpb.Struct, error) {
	var description interface{}
	if view.Description != nil {
		description = *view.Description
	}
	return structpb.NewStruct(map[string]interface{}{
		"id":             view.ID,
		"name":           view.Name,
		"address":        view.Address,
		"latitude":       view.Latitude,
		"longitude":      view.Longitude,
		"description":    description,
		"listed_brands":  stringValues(view.ListedBrands),
		"average_rating": view.AverageRating,
		"brands":         stringValues(view.Brands),
	})
}

func stringValues(list []string) []interface{} {
	out := make([]interface{}, len(list))
	for i, v := range list {
		out[i] = v
	}
	return out
}
