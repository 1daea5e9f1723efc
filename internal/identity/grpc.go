package identity

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/caja-pos/internal/access"
	"github.com/MikeMC777/caja-pos/internal/apperr"
)

// The service speaks protobuf well-known types only, so no generated
// stubs are needed on either side.
const (
	ServiceName        = "pos.identity.v1.Identity"
	methodAuthenticate = "/" + ServiceName + "/Authenticate"
	methodResolve      = "/" + ServiceName + "/Resolve"
	methodRevoke       = "/" + ServiceName + "/Revoke"
)

// Server is the contract registered with grpc.Server.
type Server interface {
	Authenticate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Resolve(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Revoke(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

func Register(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Authenticate", Handler: authenticateHandler},
		{MethodName: "Resolve", Handler: resolveHandler},
		{MethodName: "Revoke", Handler: revokeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity.proto",
}

func authenticateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).Authenticate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodAuthenticate}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Authenticate(ctx, req.(*structpb.Struct))
	})
}

func resolveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).Resolve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodResolve}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Resolve(ctx, req.(*wrapperspb.StringValue))
	})
}

func revokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).Revoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRevoke}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Revoke(ctx, req.(*wrapperspb.StringValue))
	})
}

// LoginResult is returned by Client.Authenticate.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  access.Identity
}

// Client is the POS side of the identity service.
type Client struct {
	cc      grpc.ClientConnInterface
	timeout time.Duration
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc, timeout: 5 * time.Second}
}

// Dial opens a non-blocking connection to addr.
func Dial(addr string) (*Client, *grpc.ClientConn, error) {
	conn, err := grpc.Dial(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return NewClient(conn), conn, nil
}

func (c *Client) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	const op = "identity.authenticate"
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	in, err := structpb.NewStruct(map[string]any{"email": email, "password": password})
	if err != nil {
		return nil, apperr.Validation(op, "invalid credentials payload")
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodAuthenticate, in, out); err != nil {
		return nil, classify(op, err)
	}
	f := out.GetFields()
	res := &LoginResult{
		Token:    f["token"].GetStringValue(),
		Identity: identityFrom(out),
	}
	res.ExpiresAt, _ = time.Parse(time.RFC3339, f["expires_at"].GetStringValue())
	return res, nil
}

// Resolve returns the identity for token, or an Unauthorized error.
func (c *Client) Resolve(ctx context.Context, token string) (*access.Identity, error) {
	const op = "identity.resolve"
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodResolve, wrapperspb.String(token), out); err != nil {
		return nil, classify(op, err)
	}
	id := identityFrom(out)
	return &id, nil
}

func (c *Client) Revoke(ctx context.Context, token string) error {
	const op = "identity.revoke"
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.cc.Invoke(ctx, methodRevoke, wrapperspb.String(token), new(emptypb.Empty)); err != nil {
		return classify(op, err)
	}
	return nil
}

func identityFrom(s *structpb.Struct) access.Identity {
	f := s.GetFields()
	return access.Identity{
		UserID: f["user_id"].GetStringValue(),
		Email:  f["email"].GetStringValue(),
		Admin:  f["role"].GetStringValue() == access.RoleAdmin,
	}
}

func classify(op string, err error) error {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return apperr.Unauthorized(op, st.Message())
	case codes.InvalidArgument:
		return apperr.Validation(op, st.Message())
	default:
		return apperr.Remote(op, err)
	}
}
