package widgetauth

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// CodecName is the gRPC content-subtype used by TokenService messages.
const CodecName = "json"

const generateTokenMethod = "/widgetauth.TokenService/GenerateToken"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec lets Request and Response travel over gRPC without generated protobuf types
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

// TokenServiceServer is the server API for TokenService
type TokenServiceServer interface {
	GenerateToken(context.Context, *Request) (*Response, error)
}

// TokenServiceDesc describes TokenService for grpc.Server.RegisterService
var TokenServiceDesc = grpc.ServiceDesc{
	ServiceName: "widgetauth.TokenService",
	HandlerType: (*TokenServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GenerateToken",
			Handler:    generateTokenHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "widgetauth/grpc.go",
}

func generateTokenHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Request)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TokenServiceServer).GenerateToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: generateTokenMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TokenServiceServer).GenerateToken(ctx, req.(*Request))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterTokenService registers gw as the TokenService implementation on s
func RegisterTokenService(s grpc.ServiceRegistrar, gw *Gateway) {
	s.RegisterService(&TokenServiceDesc, &tokenServer{gw: gw})
}

type tokenServer struct {
	gw *Gateway
}

func (s *tokenServer) GenerateToken(ctx context.Context, req *Request) (*Response, error) {
	resp, err := s.gw.Handle(ctx, *req)
	if err != nil {
		if IsValidation(err) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &resp, nil
}

// TokenClient calls TokenService
type TokenClient struct {
	cc grpc.ClientConnInterface
}

// NewTokenClient returns a TokenService client on cc
func NewTokenClient(cc grpc.ClientConnInterface) *TokenClient {
	return &TokenClient{cc: cc}
}

// GenerateToken requests a token for req
func (c *TokenClient) GenerateToken(ctx context.Context, req *Request, opts ...grpc.CallOption) (*Response, error) {
	out := new(Response)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, generateTokenMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// UnaryServerInterceptor returns a gRPC unary server interceptor that attaches a request ID
// taken from x-request-id metadata, or a fresh one
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("x-request-id"); len(values) > 0 {
				requestID = values[0]
			}
		}
		if requestID == "" {
			requestID = uuid.New().String()
		}

		return handler(WithRequestID(ctx, requestID), req)
	}
}
