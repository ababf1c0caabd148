package stream

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/TheusHen/na/na/random"
)

// SealParallel seals plaintext like Seal but spreads the chunks over workers
// goroutines. Chunk i is sealed under base+i independently of its neighbours,
// and the output opens with Open or Reader. For a given base nonce the result
// is byte-identical to Seal's.
func SealParallel(ctx context.Context, key, plaintext []byte, opts Options, workers int) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrInvalidKey
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	h := header{blockSize: opts.BlockSize}
	if err := random.Fill(h.base[:]); err != nil {
		return nil, fmt.Errorf("stream: base nonce: %w", err)
	}
	enc := h.encode()

	chunks := split(plaintext, opts.ChunkSize)
	frames := make([]frame, len(chunks))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, workers*2)
	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ad := append(append([]byte(nil), enc...), 0)
			nonce := make([]byte, NonceSize)
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				chunkNonce(nonce, h.base[:], uint64(i))
				f, err := sealChunk(aead, &opts, nonce, ad, nil, chunks[i], i == len(chunks)-1)
				if err != nil {
					select {
					case errCh <- fmt.Errorf("stream: chunk %d: %w", i, err):
					default:
					}
					cancel()
					continue
				}
				frames[i] = f
			}
		}()
	}

feed:
	for i := range chunks {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(plaintext) + len(frames)*(5+opts.BlockSize+chacha20poly1305.Overhead))
	buf.Write(enc)
	for _, f := range frames {
		if err := writeFrame(&buf, f); err != nil {
			return nil, err
		}
	}
	opts.Logger.Debug("stream sealed in parallel", "chunks", len(frames), "workers", workers)
	return buf.Bytes(), nil
}

// split cuts data into chunkSize pieces. Empty input yields one empty chunk so
// the stream still carries a final frame.
func split(data []byte, chunkSize int) [][]byte {
	if len(data) == 0 {
		return [][]byte{{}}
	}
	chunks := make([][]byte, 0, (len(data)+chunkSize-1)/chunkSize)
	for len(data) > 0 {
		n := min(chunkSize, len(data))
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}
