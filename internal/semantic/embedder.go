// Package semantic provides the optional embedding-similarity backend for
// the classifier's third matching tier. The backend loads a sentence
// embedding model from an ONNX bundle directory; when the bundle or the
// onnxruntime library is absent the caller simply runs without it.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Dimensions of the default bundled model.
const (
	DefaultSeqLen     = 128
	DefaultHiddenSize = 384
)

// Status describes the backend for logging and diagnostics.
type Status struct {
	Enabled   bool
	BundleDir string
	SeqLen    int
}

// Embedder wraps one ONNX session producing mean-pooled sentence
// embeddings. Safe for concurrent use; inference is serialized on an
// internal mutex, matching the single pre-allocated tensor set.
type Embedder struct {
	session   *ort.AdvancedSession
	tokenizer *WordPieceTokenizer
	seqLen    int
	hidden    int
	bundleDir string

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	mu    sync.Mutex
	cache map[string][]float32
}

// BundlePresent reports whether the key bundle files exist on disk.
func BundlePresent(bundleDir string) bool {
	required := []string{
		"embedder.onnx",
		filepath.Join("tokenizer", "vocab.txt"),
	}
	for _, p := range required {
		if _, err := os.Stat(filepath.Join(bundleDir, p)); err != nil {
			return false
		}
	}
	return true
}

// Load initializes the ONNX session and tokenizer from a bundle dir.
// hiddenSize is the embedding width of the bundled model.
func Load(bundleDir string, seqLen, hiddenSize int) (*Embedder, error) {
	if bundleDir == "" {
		return nil, errors.New("bundleDir is empty")
	}
	if seqLen <= 0 {
		seqLen = DefaultSeqLen
	}
	if hiddenSize <= 0 {
		hiddenSize = DefaultHiddenSize
	}

	libPath := resolveSharedLibraryPath(bundleDir)
	if libPath == "" {
		return nil, errors.New("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(bundleDir, "embedder.onnx")
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}
	tokenizer, err := LoadWordPieceTokenizer(filepath.Join(bundleDir, "tokenizer", "vocab.txt"))
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	inputShape := ort.NewShape(1, int64(seqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(seqLen), int64(hiddenSize)))
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"last_hidden_state"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Embedder{
		session:       session,
		tokenizer:     tokenizer,
		seqLen:        seqLen,
		hidden:        hiddenSize,
		bundleDir:     bundleDir,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		output:        output,
		cache:         make(map[string][]float32),
	}, nil
}

// Status reports the backend state.
func (e *Embedder) Status() Status {
	if e == nil || e.session == nil {
		return Status{}
	}
	return Status{Enabled: true, BundleDir: e.bundleDir, SeqLen: e.seqLen}
}

// Similarity embeds both fragments and returns their cosine similarity
// clamped to [0, 1]. Taxonomy descriptions repeat across phrases, so
// embeddings are cached by input text.
func (e *Embedder) Similarity(ctx context.Context, a, b string) (float32, error) {
	if e == nil || e.session == nil {
		return 0, errors.New("semantic embedder not initialized")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	va, err := e.embed(a)
	if err != nil {
		return 0, err
	}
	vb, err := e.embed(b)
	if err != nil {
		return 0, err
	}

	sim := Cosine(va, vb)
	if sim < 0 {
		sim = 0
	}
	return sim, nil
}

func (e *Embedder) embed(text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.cache[text]; ok {
		return v, nil
	}

	ids, attn := e.tokenizer.Encode(text, e.seqLen)
	copy(e.inputIDs.GetData(), ids)
	copy(e.attentionMask.GetData(), attn)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	vec := meanPool(e.output.GetData(), attn, e.seqLen, e.hidden)
	e.cache[text] = vec
	return vec, nil
}

// meanPool averages the hidden states of attended tokens.
func meanPool(hidden []float32, attn []int64, seqLen, width int) []float32 {
	out := make([]float32, width)
	var count float32
	for tok := 0; tok < seqLen; tok++ {
		if tok >= len(attn) || attn[tok] == 0 {
			continue
		}
		base := tok * width
		if base+width > len(hidden) {
			break
		}
		for i := 0; i < width; i++ {
			out[i] += hidden[base+i]
		}
		count++
	}
	if count > 0 {
		for i := range out {
			out[i] /= count
		}
	}
	return out
}

// Cosine returns the cosine similarity of two equal-length vectors.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// resolveSharedLibraryPath locates a platform onnxruntime shared library.
// ONNXRUNTIME_SHARED_LIBRARY_PATH wins; otherwise common names and
// locations are probed.
func resolveSharedLibraryPath(bundleDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		bundleDir,
		filepath.Join(bundleDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
