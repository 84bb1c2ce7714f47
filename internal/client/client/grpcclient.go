package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	invoker     *rpc.Invoker

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	return invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
}

// NewGRPCClient creates a client for endpointURL. Extra dial options are
// appended after the defaults (insecure transport, token interceptor).
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.invoker = rpc.NewInvoker(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// SetAccessToken replaces the token sent with every call.
func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.invoker.Call(ctx, rpc.MethodPing, nil)
	if err != nil {
		return s.mapError(err)
	}
	if st, _ := rpc.String(resp["status"]); st != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, email, password string) (Identity, error) {
	return s.authenticate(ctx, rpc.MethodRegister, email, password)
}

// Login authenticates and keeps the returned access token for later calls.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (Identity, error) {
	return s.authenticate(ctx, rpc.MethodLogin, email, password)
}

func (s *GRPCClient) authenticate(ctx context.Context, method, email, password string) (Identity, error) {
	resp, err := s.invoker.Call(ctx, method, map[string]any{"email": email, "password": password})
	if err != nil {
		return Identity{}, s.mapError(err)
	}

	id, _ := rpc.String(resp["identity_id"])
	token, _ := rpc.String(resp["access_token"])
	if id == "" || token == "" {
		return Identity{}, fmt.Errorf("%s: incomplete identity in response", method)
	}

	s.SetAccessToken(token)
	return Identity{ID: id, AccessToken: token}, nil
}

func (s *GRPCClient) Merge(ctx context.Context, path string, fields map[string]any) error {
	_, err := s.invoker.Call(ctx, rpc.MethodMergeDocument, map[string]any{"path": path, "fields": fields})
	return s.mapError(err)
}

func (s *GRPCClient) List(ctx context.Context, collection string) ([]Document, error) {
	resp, err := s.invoker.Call(ctx, rpc.MethodListCollection, map[string]any{"path": collection})
	if err != nil {
		return nil, s.mapError(err)
	}

	raw, _ := resp["documents"].([]any)
	docs := make([]Document, 0, len(raw))
	for _, r := range raw {
		m := rpc.Map(r)
		if m == nil {
			continue
		}
		path, _ := rpc.String(m["path"])
		id, _ := rpc.String(m["id"])
		docs = append(docs, Document{Path: path, ID: id, Fields: rpc.Map(m["fields"])})
	}
	return docs, nil
}

func (s *GRPCClient) SemanticSearch(ctx context.Context, query, searchType string, topK int) ([]SearchHit, error) {
	resp, err := s.invoker.Call(ctx, rpc.MethodSemanticSearch, map[string]any{
		"query":       query,
		"search_type": searchType,
		"top_k":       topK,
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	raw, _ := resp["results"].([]any)
	hits := make([]SearchHit, 0, len(raw))
	for _, r := range raw {
		m := rpc.Map(r)
		if m == nil {
			continue
		}
		var h SearchHit
		h.ID, _ = rpc.String(m["id"])
		h.Type, _ = rpc.String(m["type"])
		h.Score, _ = rpc.Float64(m["score"])
		h.Name, _ = rpc.String(m["name"])
		h.Location, _ = rpc.String(m["location"])
		h.Description, _ = rpc.String(m["description"])
		h.ObservationText, _ = rpc.String(m["observation_text"])
		h.HikeID, _ = rpc.String(m["hike_id"])
		hits = append(hits, h)
	}
	return hits, nil
}

// PresignPicture asks for a presigned URL. method is "PUT" (key may be empty
// and is then allocated by the server) or "GET". It returns the storage key
// and the URL.
func (s *GRPCClient) PresignPicture(ctx context.Context, method, key string) (string, string, error) {
	resp, err := s.invoker.Call(ctx, rpc.MethodPresignPicture, map[string]any{"method": method, "key": key})
	if err != nil {
		return "", "", s.mapError(err)
	}
	k, _ := rpc.String(resp["key"])
	u, _ := rpc.String(resp["url"])
	return k, u, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
