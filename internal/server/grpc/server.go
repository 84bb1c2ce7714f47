// Package grpc exposes the server services over the TrailKeeper gRPC
// service described in internal/rpc.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/rpc"
	"github.com/dmitrijs2005/trailkeeper/internal/server/models"
	"github.com/dmitrijs2005/trailkeeper/internal/server/services"
	"google.golang.org/grpc"
)

type UserService interface {
	Register(ctx context.Context, email, password string) (*services.Identity, error)
	Login(ctx context.Context, email, password string) (*services.Identity, error)
}

type DocumentService interface {
	Merge(ctx context.Context, identityID, path string, fields map[string]any) error
	List(ctx context.Context, identityID, path string) ([]models.Document, error)
}

type SearchService interface {
	Search(ctx context.Context, identityID, query, searchType string, topK int) (*services.SearchResult, error)
}

type PictureService interface {
	PresignPut(ctx context.Context, identityID, key string) (string, string, error)
	PresignGet(ctx context.Context, identityID, key string) (string, error)
}

// Services bundles what the handlers delegate to.
type Services struct {
	Users     UserService
	Documents DocumentService
	Search    SearchService
	Pictures  PictureService
}

type GRPCServer struct {
	address   string
	users     UserService
	documents DocumentService
	search    SearchService
	pictures  PictureService
	logger    logging.Logger
	jwtSecret []byte
}

var _ rpc.Server = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     svc.Users,
		documents: svc.Documents,
		search:    svc.Search,
		pictures:  svc.Pictures,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	rpc.RegisterServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
