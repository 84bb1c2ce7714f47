package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/docpath"
	"github.com/dmitrijs2005/trailkeeper/internal/embedding"
	"github.com/dmitrijs2005/trailkeeper/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return rpc.NewStruct(map[string]any{"status": "OK"})
}

func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := in.AsMap()
	email, _ := rpc.String(req["email"])
	password, _ := rpc.String(req["password"])

	s.logger.Info(ctx, "Registration request")

	id, err := s.users.Register(ctx, email, password)
	if err != nil {
		return nil, s.statusError(ctx, "register", err)
	}

	s.logger.Info(ctx, "Registered", "identity_id", id.ID)
	return rpc.NewStruct(map[string]any{"identity_id": id.ID, "access_token": id.AccessToken})
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := in.AsMap()
	email, _ := rpc.String(req["email"])
	password, _ := rpc.String(req["password"])

	id, err := s.users.Login(ctx, email, password)
	if err != nil {
		return nil, s.statusError(ctx, "login", err)
	}

	return rpc.NewStruct(map[string]any{"identity_id": id.ID, "access_token": id.AccessToken})
}

func (s *GRPCServer) MergeDocument(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	identityID, path, err := s.ownedPath(ctx, in)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if v, ok := in.GetFields()["fields"]; ok {
		sv := v.GetStructValue()
		if sv == nil {
			return nil, status.Error(codes.InvalidArgument, "fields must be an object")
		}
		fields = sv.AsMap()
	}

	if err := s.documents.Merge(ctx, identityID, path, fields); err != nil {
		return nil, s.statusError(ctx, "merge document", err)
	}
	return &structpb.Struct{}, nil
}

func (s *GRPCServer) ListCollection(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	identityID, path, err := s.ownedPath(ctx, in)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.List(ctx, identityID, path)
	if err != nil {
		return nil, s.statusError(ctx, "list collection", err)
	}

	out := make([]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, map[string]any{"path": d.Path, "id": d.DocID, "fields": d.Fields})
	}
	return s.encode(ctx, map[string]any{"documents": out})
}

func (s *GRPCServer) SemanticSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	identityID, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	req := in.AsMap()
	query, _ := rpc.String(req["query"])
	searchType, _ := rpc.String(req["search_type"])
	topK, _ := rpc.Int64(req["top_k"])

	res, err := s.search.Search(ctx, identityID, query, searchType, int(topK))
	if err != nil {
		return nil, s.statusError(ctx, "semantic search", err)
	}

	results := make([]any, 0, len(res.Hits))
	for _, h := range res.Hits {
		results = append(results, map[string]any{
			"id":               h.ID,
			"type":             h.Type,
			"score":            h.Score,
			"name":             h.Name,
			"location":         h.Location,
			"description":      h.Description,
			"observation_text": h.ObservationText,
			"hike_id":          h.HikeID,
		})
	}
	return s.encode(ctx, map[string]any{"results": results, "query_embedding_length": res.QueryVectorSize})
}

func (s *GRPCServer) PresignPicture(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	identityID, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	req := in.AsMap()
	method, _ := rpc.String(req["method"])
	key, _ := rpc.String(req["key"])

	switch strings.ToUpper(method) {
	case "PUT", "":
		k, url, err := s.pictures.PresignPut(ctx, identityID, key)
		if err != nil {
			return nil, s.statusError(ctx, "presign put", err)
		}
		return rpc.NewStruct(map[string]any{"key": k, "url": url})
	case "GET":
		url, err := s.pictures.PresignGet(ctx, identityID, key)
		if err != nil {
			return nil, s.statusError(ctx, "presign get", err)
		}
		return rpc.NewStruct(map[string]any{"key": key, "url": url})
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unsupported method %q", method)
	}
}

// ownedPath extracts the request path and checks it lies under the caller's
// users/{identity} document.
func (s *GRPCServer) ownedPath(ctx context.Context, in *structpb.Struct) (string, string, error) {
	identityID, ok := IdentityFromContext(ctx)
	if !ok {
		return "", "", status.Error(codes.Unauthenticated, "unauthenticated")
	}

	path, _ := rpc.String(in.AsMap()["path"])
	p, err := docpath.Parse(path)
	if err != nil {
		return "", "", status.Error(codes.InvalidArgument, err.Error())
	}
	if p.Owner() != identityID {
		return "", "", status.Errorf(codes.PermissionDenied, "path %q is outside %s", path, docpath.User(identityID))
	}
	return identityID, p.String(), nil
}

func (s *GRPCServer) encode(ctx context.Context, m map[string]any) (*structpb.Struct, error) {
	out, err := rpc.NewStruct(m)
	if err != nil {
		s.logger.Error(ctx, "encode response", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// statusError maps service errors onto gRPC codes. Unexpected errors are
// logged and reported as Internal without details.
func (s *GRPCServer) statusError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrOwnershipConflict):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrInvalidArgument), errors.Is(err, common.ErrInvalidPath):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, embedding.ErrNotConfigured):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		s.logger.Error(ctx, op+" failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
