package ws

import (
	"context"
	"encoding/json"
	"errors"

	"habitsync/internal/common"
	"habitsync/internal/protocol"
)

func (s *Server) dispatch(ctx context.Context, c *conn, req *protocol.Request) *protocol.Response {
	switch req.Method {
	case protocol.MethodSignIn:
		return s.handleSignIn(ctx, c, req)
	case protocol.MethodRefresh:
		return s.handleRefresh(ctx, req)
	case protocol.MethodPing:
		return result(protocol.PingResult{Status: "OK"})
	}

	// Everything below requires a valid access token.
	accountID, err := s.accounts.VerifyAccessToken(req.Token)
	if err != nil {
		return fail(err)
	}
	c.setAccountID(accountID)
	s.hub.register(accountID, c)

	switch req.Method {
	case protocol.MethodFlagGet:
		return s.handleFlagGet(ctx, accountID, req)
	case protocol.MethodFlagSet:
		return s.handleFlagSet(ctx, c, accountID, req)
	case protocol.MethodPull:
		return s.handlePull(ctx, accountID)
	case protocol.MethodPush:
		return s.handlePush(ctx, c, accountID, req)
	default:
		return &protocol.Response{Error: &protocol.Error{
			Code: protocol.CodeBadRequest, Message: "unknown method: " + req.Method,
		}}
	}
}

func (s *Server) handleSignIn(ctx context.Context, c *conn, req *protocol.Request) *protocol.Response {
	var params protocol.SignInParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return badRequest("malformed signin params")
	}
	if params.Account == "" || params.Passphrase == "" {
		return badRequest("account and passphrase are required")
	}

	pair, err := s.accounts.SignIn(ctx, params.Account, params.Passphrase, params.DeviceID)
	if err != nil {
		return fail(err)
	}

	if accountID, err := s.accounts.VerifyAccessToken(pair.AccessToken); err == nil {
		c.setAccountID(accountID)
		s.hub.register(accountID, c)
	}

	return result(protocol.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) handleRefresh(ctx context.Context, req *protocol.Request) *protocol.Response {
	var params protocol.RefreshParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return badRequest("malformed refresh params")
	}

	pair, err := s.accounts.Refresh(ctx, params.RefreshToken)
	if err != nil {
		return fail(err)
	}

	return result(protocol.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) handleFlagGet(ctx context.Context, accountID string, req *protocol.Request) *protocol.Response {
	var params protocol.FlagGetParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return badRequest("malformed flag_get params")
	}

	flag, err := s.sync.GetFlag(ctx, accountID, params.Key)
	if err != nil {
		return fail(err)
	}
	return result(flag)
}

func (s *Server) handleFlagSet(ctx context.Context, c *conn, accountID string, req *protocol.Request) *protocol.Response {
	var params protocol.FlagSetParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return badRequest("malformed flag_set params")
	}

	version, err := s.sync.SetFlag(ctx, accountID, params.Key, params.Value)
	if err != nil {
		return fail(err)
	}

	s.hub.Broadcast(ctx, accountID, c, protocol.ChangeEvent{Scope: "flags", Version: version})
	return result(protocol.FlagValue{Key: params.Key, Value: params.Value})
}

func (s *Server) handlePull(ctx context.Context, accountID string) *protocol.Response {
	snap, err := s.sync.Pull(ctx, accountID)
	if err != nil {
		return fail(err)
	}
	return result(snap)
}

func (s *Server) handlePush(ctx context.Context, c *conn, accountID string, req *protocol.Request) *protocol.Response {
	var params protocol.PushParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return badRequest("malformed push params")
	}

	version, err := s.sync.Push(ctx, accountID, params)
	if err != nil {
		return fail(err)
	}

	s.hub.Broadcast(ctx, accountID, c, protocol.ChangeEvent{Scope: "data", Version: version})
	return result(protocol.PushResult{Version: version})
}

func result(v any) *protocol.Response {
	raw, err := protocol.Marshal(v)
	if err != nil {
		return &protocol.Response{Error: &protocol.Error{Code: protocol.CodeInternal, Message: "encode error"}}
	}
	return &protocol.Response{Result: raw}
}

func badRequest(msg string) *protocol.Response {
	return &protocol.Response{Error: &protocol.Error{Code: protocol.CodeBadRequest, Message: msg}}
}

func fail(err error) *protocol.Response {
	e := &protocol.Error{Message: err.Error()}
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		e.Code = protocol.CodeTokenExpired
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken):
		e.Code = protocol.CodeUnauthorized
	case errors.Is(err, common.ErrNotFound):
		e.Code = protocol.CodeNotFound
	default:
		e.Code = protocol.CodeInternal
	}
	return &protocol.Response{Error: e}
}
