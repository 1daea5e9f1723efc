package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Service implements the identity gRPC server over users and sessions.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(users UserRepository, sessions SessionRepository, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, sessions: sessions, ttl: ttl, now: time.Now, logger: logger}
}

func identityStruct(u *User) map[string]any {
	return map[string]any{
		"user_id": u.ID,
		"email":   u.Email,
		"name":    u.Name,
		"role":    u.Role,
	}
}

// Authenticate checks email and password and issues a session token.
func (s *Service) Authenticate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	email := NormalizeEmail(in.GetFields()["email"].GetStringValue())
	password := in.GetFields()["password"].GetStringValue()
	if email == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, status.Error(codes.Unauthenticated, "invalid credentials")
		}
		return nil, status.Errorf(codes.Internal, "auth error: %v", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		s.logger.Info("login rejected", zap.String("email", email))
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}

	sess := &Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, status.Errorf(codes.Internal, "session error: %v", err)
	}
	s.logger.Info("login", zap.String("user_id", u.ID), zap.String("role", u.Role))

	fields := identityStruct(u)
	fields["token"] = sess.Token
	fields["expires_at"] = sess.ExpiresAt.Format(time.RFC3339)
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode error: %v", err)
	}
	return out, nil
}

// Resolve returns the identity behind a live session token.
func (s *Service) Resolve(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	token := in.GetValue()
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, status.Error(codes.Unauthenticated, "unknown session")
		}
		return nil, status.Errorf(codes.Internal, "session error: %v", err)
	}
	if !s.now().Before(sess.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, status.Error(codes.Unauthenticated, "session expired")
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, status.Error(codes.Unauthenticated, "user no longer exists")
		}
		return nil, status.Errorf(codes.Internal, "get error: %v", err)
	}
	out, err := structpb.NewStruct(identityStruct(u))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode error: %v", err)
	}
	return out, nil
}

// Revoke ends a session. Unknown tokens are not an error.
func (s *Service) Revoke(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}
	if err := s.sessions.Delete(ctx, in.GetValue()); err != nil {
		return nil, status.Errorf(codes.Internal, "revoke error: %v", err)
	}
	return &emptypb.Empty{}, nil
}
