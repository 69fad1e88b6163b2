package jsonrpc

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

// maxBodyBytes bounds a single request body.
const maxBodyBytes = 1 << 20

// Handler serves JSON-RPC requests against a didrpc.Querier.
type Handler struct {
	q      didrpc.Querier
	logger *slog.Logger
}

// NewHandler creates a handler. A nil logger discards output.
func NewHandler(q didrpc.Querier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{q: q, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, nil, newError(CodeParseError, "Parse error", err.Error()))
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		h.writeError(w, nil, newError(CodeInvalidRequest, "Invalid request", "batch requests are not supported"))
		return
	}

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, nil, newError(CodeParseError, "Parse error", err.Error()))
		return
	}
	if req.JSONRPC != version || req.Method == "" {
		h.writeError(w, jsoniter.RawMessage(req.ID), newError(CodeInvalidRequest, "Invalid request", ""))
		return
	}
	if req.ID.isNotification() {
		// Notification. The only method is a pure read, so there is
		// nothing to execute and no reply is sent.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if req.Method != MethodReadAttribute {
		h.writeError(w, jsoniter.RawMessage(req.ID), newError(CodeMethodNotFound, "Method not found", req.Method))
		return
	}

	account, name, at, perr := decodeParams(req.Params)
	if perr != nil {
		h.writeError(w, jsoniter.RawMessage(req.ID), perr)
		return
	}

	attr, err := h.q.ReadAttribute(r.Context(), account, name, at)
	if err != nil {
		svcErr, ok := didrpc.IsServiceError(err)
		if !ok {
			svcErr = didrpc.NewRuntimeError(err)
		}
		h.writeError(w, jsoniter.RawMessage(req.ID), fromServiceError(svcErr))
		return
	}
	h.write(w, successResponse{JSONRPC: version, ID: idOrNull(jsoniter.RawMessage(req.ID)), Result: attr})
}

// decodeParams decodes [account, name, at?].
func decodeParams(raw jsoniter.RawMessage) (types.AccountID, types.Bytes, types.Snapshot, *Error) {
	var (
		account types.AccountID
		name    types.Bytes
		at      *types.Hash
		params  []jsoniter.RawMessage
	)
	if err := json.Unmarshal(raw, &params); err != nil {
		return account, nil, types.Best(), newError(CodeInvalidParams, "Invalid params", "params must be an array")
	}
	if len(params) < 2 || len(params) > 3 {
		return account, nil, types.Best(), newError(CodeInvalidParams, "Invalid params", "expected [account, name, at?]")
	}
	if err := json.Unmarshal(params[0], &account); err != nil {
		return account, nil, types.Best(), newError(CodeInvalidParams, "Invalid params", "account: "+err.Error())
	}
	if err := json.Unmarshal(params[1], &name); err != nil {
		return account, nil, types.Best(), newError(CodeInvalidParams, "Invalid params", "name: "+err.Error())
	}
	if len(params) == 3 && !isNull(params[2]) {
		if err := json.Unmarshal(params[2], &at); err != nil {
			return account, nil, types.Best(), newError(CodeInvalidParams, "Invalid params", "at: "+err.Error())
		}
	}
	return account, name, types.SnapshotFromPtr(at), nil
}

func (h *Handler) writeError(w http.ResponseWriter, id jsoniter.RawMessage, e *Error) {
	h.write(w, errorResponse{JSONRPC: version, ID: idOrNull(id), Error: e})
}

func (h *Handler) write(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("encode json-rpc response", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("write json-rpc response", slog.Any("error", err))
	}
}

// isNull reports whether a decoded param is JSON null. The decoder
// leaves a null array element as an empty RawMessage. An explicit
// null snapshot means the best block.
func isNull(raw jsoniter.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func idOrNull(id jsoniter.RawMessage) jsoniter.RawMessage {
	if len(id) == 0 {
		return jsoniter.RawMessage("null")
	}
	return id
}
