// Package options contains flags and options for initializing the tutor server.
package options

import (
	"fmt"
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/tutor-x/internal/tutor"
	cliflag "github.com/kart-io/tutor-x/pkg/app/cliflag"
	llmopts "github.com/kart-io/tutor-x/pkg/options/llm"
	logopts "github.com/kart-io/tutor-x/pkg/options/logger"
	ragopts "github.com/kart-io/tutor-x/pkg/options/rag"
	httpopts "github.com/kart-io/tutor-x/pkg/options/server/http"
	sessionopts "github.com/kart-io/tutor-x/pkg/options/session"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// RAGOptions contains document indexing and retrieval configuration.
	RAGOptions *ragopts.Options `json:"rag" mapstructure:"rag"`

	// SessionOptions contains conversation history configuration.
	SessionOptions *sessionopts.Options `json:"session" mapstructure:"session"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:      httpopts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatOptions:      llmopts.NewChatOptions(),
		RAGOptions:       ragopts.NewOptions(),
		SessionOptions:   sessionopts.NewOptions(),
		ShutdownTimeout:  30 * time.Second,
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.EmbeddingOptions.AddFlags(fss.FlagSet("embedding"), "embedding")
	o.ChatOptions.AddFlags(fss.FlagSet("chat"), "chat")
	o.RAGOptions.AddFlags(fss.FlagSet("rag"))
	o.SessionOptions.AddFlags(fss.FlagSet("session"))

	// misc flags
	fs := fss.FlagSet("misc")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return err
	}
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.ChatOptions.Complete(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if err := o.RAGOptions.Complete(); err != nil {
		return fmt.Errorf("rag: %w", err)
	}
	if err := o.SessionOptions.Complete(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.RAGOptions.Validate()...)
	errs = append(errs, o.SessionOptions.Validate()...)

	return utilerrors.NewAggregate(errs)
}

// Config builds a tutor.Config based on ServerOptions.
func (o *ServerOptions) Config() (*tutor.Config, error) {
	return &tutor.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		RAGOptions:       o.RAGOptions,
		SessionOptions:   o.SessionOptions,
		ShutdownTimeout:  o.ShutdownTimeout,
	}, nil
}
