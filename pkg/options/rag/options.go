// Package rag provides configuration options for document indexing and retrieval.
package rag

import (
	"fmt"

	"github.com/kart-io/tutor-x/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains retrieval-specific configuration.
type Options struct {
	// ChunkSize is the size of text chunks in characters.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between consecutive chunks.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the number of results to return from similarity search.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// DataDir is the directory holding per-student vector indexes.
	DataDir string `json:"data-dir" mapstructure:"data-dir"`

	// UploadDir is the directory holding uploaded study materials.
	UploadDir string `json:"upload-dir" mapstructure:"upload-dir"`

	// MaxUploadSize is the maximum accepted upload body size in bytes.
	MaxUploadSize int64 `json:"max-upload-size" mapstructure:"max-upload-size"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:     700,
		ChunkOverlap:  70,
		TopK:          3,
		DataDir:       "vector_stores",
		UploadDir:     "uploads",
		MaxUploadSize: 16 << 20,
	}
}

// AddFlags adds flags for retrieval options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"rag.chunk-size", o.ChunkSize, "Size of text chunks in characters.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"rag.chunk-overlap", o.ChunkOverlap, "Overlap between consecutive chunks.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"rag.top-k", o.TopK, "Number of results from similarity search.")
	fs.StringVar(&o.DataDir, options.Join(prefixes...)+"rag.data-dir", o.DataDir, "Directory holding per-student vector indexes.")
	fs.StringVar(&o.UploadDir, options.Join(prefixes...)+"rag.upload-dir", o.UploadDir, "Directory holding uploaded study materials.")
	fs.Int64Var(&o.MaxUploadSize, options.Join(prefixes...)+"rag.max-upload-size", o.MaxUploadSize, "Maximum upload body size in bytes.")
}

// Validate validates the retrieval options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("chunk-overlap cannot be negative"))
	}
	if o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk-overlap must be smaller than chunk-size"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.DataDir == "" {
		errs = append(errs, fmt.Errorf("data-dir is required"))
	}
	if o.UploadDir == "" {
		errs = append(errs, fmt.Errorf("upload-dir is required"))
	}
	if o.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("max-upload-size must be positive"))
	}
	return errs
}

// Complete completes the retrieval options with defaults.
func (o *Options) Complete() error {
	return nil
}
