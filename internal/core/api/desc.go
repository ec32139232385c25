package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "policystore.v1.PolicyService"

// Full method names, as seen by interceptors.
const (
	LoadPolicyMethod           = "/" + ServiceName + "/LoadPolicy"
	AddPoliciesMethod          = "/" + ServiceName + "/AddPolicies"
	RemovePoliciesMethod       = "/" + ServiceName + "/RemovePolicies"
	RemoveFilteredPolicyMethod = "/" + ServiceName + "/RemoveFilteredPolicy"
)

// PolicyServiceServer is the server API for the policy service.
type PolicyServiceServer interface {
	LoadPolicy(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddPolicies(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemovePolicies(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveFilteredPolicy(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var _ PolicyServiceServer = (*PolicyService)(nil)

// RegisterPolicyService registers srv on s.
func RegisterPolicyService(s grpc.ServiceRegistrar, srv PolicyServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type unaryMethod func(PolicyServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a method to grpc.MethodHandler, running interceptors.
func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PolicyServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PolicyServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the policy service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PolicyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LoadPolicy", Handler: unaryHandler(LoadPolicyMethod, PolicyServiceServer.LoadPolicy)},
		{MethodName: "AddPolicies", Handler: unaryHandler(AddPoliciesMethod, PolicyServiceServer.AddPolicies)},
		{MethodName: "RemovePolicies", Handler: unaryHandler(RemovePoliciesMethod, PolicyServiceServer.RemovePolicies)},
		{MethodName: "RemoveFilteredPolicy", Handler: unaryHandler(RemoveFilteredPolicyMethod, PolicyServiceServer.RemoveFilteredPolicy)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "policystore/v1/policy.proto",
}

// PolicyServiceClient calls the policy service over a client connection.
type PolicyServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPolicyServiceClient returns a client using cc.
func NewPolicyServiceClient(cc grpc.ClientConnInterface) *PolicyServiceClient {
	return &PolicyServiceClient{cc: cc}
}

func (c *PolicyServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PolicyServiceClient) LoadPolicy(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, LoadPolicyMethod, in, opts...)
}

func (c *PolicyServiceClient) AddPolicies(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AddPoliciesMethod, in, opts...)
}

func (c *PolicyServiceClient) RemovePolicies(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RemovePoliciesMethod, in, opts...)
}

func (c *PolicyServiceClient) RemoveFilteredPolicy(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RemoveFilteredPolicyMethod, in, opts...)
}
