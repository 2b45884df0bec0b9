package grpc

// Service definition for mortgage.advisor.v1.AdvisorService. Messages are the
// application DTOs carried by the JSON codec, so clients call with
// grpc.CallContentSubtype("json").

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "mortgage.advisor.v1.AdvisorService"

// Full method names, as seen by interceptors.
const (
	MethodSubmitApplication       = "/" + ServiceName + "/SubmitApplication"
	MethodGetApplication          = "/" + ServiceName + "/GetApplication"
	MethodGenerateRecommendations = "/" + ServiceName + "/GenerateRecommendations"
	MethodGetRecommendation       = "/" + ServiceName + "/GetRecommendation"
	MethodListProducts            = "/" + ServiceName + "/ListProducts"
	MethodSimulateSchedule        = "/" + ServiceName + "/SimulateSchedule"
	MethodSyncCatalog             = "/" + ServiceName + "/SyncCatalog"
)

// AdvisorServiceServer is the server API for AdvisorService.
type AdvisorServiceServer interface {
	SubmitApplication(context.Context, *dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error)
	GetApplication(context.Context, *dto.GetApplicationRequest) (*dto.ApplicationResponse, error)
	GenerateRecommendations(context.Context, *dto.GenerateRecommendationsRequest) (*dto.RecommendationResponse, error)
	GetRecommendation(context.Context, *dto.GetRecommendationRequest) (*dto.RecommendationResponse, error)
	ListProducts(context.Context, *dto.ListProductsRequest) (*dto.ListProductsResponse, error)
	SimulateSchedule(context.Context, *dto.SimulateScheduleRequest) (*dto.SimulateScheduleResponse, error)
	SyncCatalog(context.Context, *dto.SyncCatalogRequest) (*dto.SyncCatalogResponse, error)
	mustEmbedUnimplementedAdvisorServiceServer()
}

// UnimplementedAdvisorServiceServer provides forward-compatible default implementations.
type UnimplementedAdvisorServiceServer struct{}

func (UnimplementedAdvisorServiceServer) SubmitApplication(context.Context, *dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitApplication not implemented")
}
func (UnimplementedAdvisorServiceServer) GetApplication(context.Context, *dto.GetApplicationRequest) (*dto.ApplicationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetApplication not implemented")
}
func (UnimplementedAdvisorServiceServer) GenerateRecommendations(context.Context, *dto.GenerateRecommendationsRequest) (*dto.RecommendationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GenerateRecommendations not implemented")
}
func (UnimplementedAdvisorServiceServer) GetRecommendation(context.Context, *dto.GetRecommendationRequest) (*dto.RecommendationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetRecommendation not implemented")
}
func (UnimplementedAdvisorServiceServer) ListProducts(context.Context, *dto.ListProductsRequest) (*dto.ListProductsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListProducts not implemented")
}
func (UnimplementedAdvisorServiceServer) SimulateSchedule(context.Context, *dto.SimulateScheduleRequest) (*dto.SimulateScheduleResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SimulateSchedule not implemented")
}
func (UnimplementedAdvisorServiceServer) SyncCatalog(context.Context, *dto.SyncCatalogRequest) (*dto.SyncCatalogResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SyncCatalog not implemented")
}
func (UnimplementedAdvisorServiceServer) mustEmbedUnimplementedAdvisorServiceServer() {}

// RegisterAdvisorServiceServer registers srv with the gRPC server.
func RegisterAdvisorServiceServer(s grpclib.ServiceRegistrar, srv AdvisorServiceServer) {
	s.RegisterService(&advisorServiceDesc, srv)
}

var advisorServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdvisorServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "SubmitApplication", Handler: unaryHandler(MethodSubmitApplication, AdvisorServiceServer.SubmitApplication)},
		{MethodName: "GetApplication", Handler: unaryHandler(MethodGetApplication, AdvisorServiceServer.GetApplication)},
		{MethodName: "GenerateRecommendations", Handler: unaryHandler(MethodGenerateRecommendations, AdvisorServiceServer.GenerateRecommendations)},
		{MethodName: "GetRecommendation", Handler: unaryHandler(MethodGetRecommendation, AdvisorServiceServer.GetRecommendation)},
		{MethodName: "ListProducts", Handler: unaryHandler(MethodListProducts, AdvisorServiceServer.ListProducts)},
		{MethodName: "SimulateSchedule", Handler: unaryHandler(MethodSimulateSchedule, AdvisorServiceServer.SimulateSchedule)},
		{MethodName: "SyncCatalog", Handler: unaryHandler(MethodSyncCatalog, AdvisorServiceServer.SyncCatalog)},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "mortgage/advisor/v1/advisor.proto",
}

// unaryHandler adapts a typed service method to a grpc method handler.
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(AdvisorServiceServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AdvisorServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AdvisorServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
