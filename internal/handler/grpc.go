package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/MikhailRaia/url-shortcuts/internal/keygen"
	"github.com/MikhailRaia/url-shortcuts/internal/proto"
	"github.com/MikhailRaia/url-shortcuts/internal/storage"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type ShortcutGRPCServer struct {
	proto.UnimplementedShortcutServiceServer
	service ShortcutService
}

func NewShortcutGRPCServer(service ShortcutService) *ShortcutGRPCServer {
	return &ShortcutGRPCServer{
		service: service,
	}
}

func (s *ShortcutGRPCServer) CreateShortcut(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	originalURL := strings.TrimSpace(req.GetValue())
	if originalURL == "" {
		return nil, status.Error(codes.InvalidArgument, "url is required")
	}

	shortURL, err := s.service.Shorten(ctx, originalURL)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmptyURL):
			return nil, status.Error(codes.InvalidArgument, "url is required")
		case errors.Is(err, keygen.ErrEntropyUnavailable):
			return nil, status.Error(codes.Internal, "failed to generate key")
		default:
			return nil, status.Errorf(codes.Internal, "failed to create shortcut: %v", err)
		}
	}

	return wrapperspb.String(shortURL), nil
}

func (s *ShortcutGRPCServer) ResolveShortcut(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	key := req.GetValue()
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, "key is required")
	}

	originalURL, found, err := s.service.Resolve(ctx, key)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to resolve shortcut: %v", err)
	}

	if !found {
		return nil, status.Error(codes.NotFound, "shortcut not found")
	}

	return wrapperspb.String(originalURL), nil
}
