package cmd

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/toolspace/internal/runtime"
	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
	"github.com/nextlevelbuilder/toolspace/pkg/protocol"
)

// serveCmd starts the long-lived process. It is a stub in the sense
// spec.md §1 describes: the runtime owns request handling, not the
// router, TLS termination, or auth in front of it. This is the minimal
// handler an embedding server hands traffic to.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the runtime as a long-lived process, bound to the configured address",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt := runtime.New(cfg)

			mux := http.NewServeMux()
			mux.HandleFunc("/execute", executeHandler(rt))

			slog.Info("server.listening", "bind", cfg.Bind, "content_root", cfg.ContentRoot)
			return http.ListenAndServe(cfg.Bind, mux)
		},
	}
}

func executeHandler(rt *runtime.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}

		var req protocol.ActionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, toolerr.Wrap(toolerr.KindMalformedFrontmatter, "invalid request body", err))
			return
		}

		resp, err := rt.Execute(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func writeError(w http.ResponseWriter, err error) {
	te, ok := err.(*toolerr.Error)
	if !ok {
		te = toolerr.Wrap(toolerr.KindInternal, "internal error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(te.HTTPStatus())
	_ = json.NewEncoder(w).Encode(protocol.ErrorResponse{
		Kind:    string(te.Kind),
		Message: te.Message,
		Detail:  te.Detail,
	})
}
