package runtime

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/zeerakw/tally"
)

// WasmGuest reads entries out of a WebAssembly module. The module exports
// entry_count, key_ptr, key_len, value_count and value_at; key bytes are
// read from the module's exported memory.
type WasmGuest struct {
	runtime wazero.Runtime
	module  api.Module
}

func NewWasmGuest(ctx context.Context, binary []byte) (*WasmGuest, error) {
	r := wazero.NewRuntime(ctx)

	wasi_snapshot_preview1.MustInstantiate(ctx, r)
	config := wazero.NewModuleConfig().WithStartFunctions("_initialize")

	mod, err := r.InstantiateWithConfig(ctx, binary, config)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("error instantiating guest module: %v", err)
	}
	return &WasmGuest{runtime: r, module: mod}, nil
}

func (g *WasmGuest) Close(ctx context.Context) error {
	return g.runtime.Close(ctx)
}

func (g *WasmGuest) EntryCount(ctx context.Context) (int, error) {
	n, err := g.call(ctx, "entry_count")
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (g *WasmGuest) Entry(ctx context.Context, i int) (tally.Entry, error) {
	key, err := g.readKey(ctx, i)
	if err != nil {
		return tally.Entry{}, err
	}

	count, err := g.call(ctx, "value_count", uint64(i))
	if err != nil {
		return tally.Entry{}, err
	}

	values := make([]int64, 0, count)
	for j := 0; j < int(count); j++ {
		v, err := g.call(ctx, "value_at", uint64(i), uint64(j))
		if err != nil {
			return tally.Entry{}, err
		}
		values = append(values, int64(v))
	}

	return tally.Entry{Key: key, Values: values}, nil
}

func (g *WasmGuest) readKey(ctx context.Context, i int) (string, error) {
	ptr, err := g.call(ctx, "key_ptr", uint64(i))
	if err != nil {
		return "", err
	}
	length, err := g.call(ctx, "key_len", uint64(i))
	if err != nil {
		return "", err
	}

	buf, ok := g.module.Memory().Read(uint32(ptr), uint32(length))
	if !ok {
		return "", fmt.Errorf("key %d is out of the guest memory range", i)
	}
	return string(buf), nil
}

func (g *WasmGuest) call(ctx context.Context, name string, args ...uint64) (uint64, error) {
	fn := g.module.ExportedFunction(name)
	if fn == nil {
		return 0, fmt.Errorf("guest module does not export %q", name)
	}
	res, err := fn.Call(ctx, args...)
	if err != nil {
		return 0, fmt.Errorf("error calling guest func %q: %v", name, err)
	}
	if len(res) == 0 {
		return 0, fmt.Errorf("guest func %q returned no value", name)
	}
	return res[0], nil
}
