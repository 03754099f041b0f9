package interp

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
)

const weightsVersion = 1

type weightsFile struct {
	Version int           `cbor:"version"`
	Layers  []layerRecord `cbor:"layers"`
}

type layerRecord struct {
	Transposed bool      `cbor:"transposed"`
	In         int       `cbor:"in"`
	Out        int       `cbor:"out"`
	Kernel     int       `cbor:"kernel"`
	Padding    int       `cbor:"padding"`
	Weights    []float32 `cbor:"weights"`
	Bias       []float32 `cbor:"bias"`
}

func (m *Model) MarshalBinary() ([]byte, error) {
	wf := weightsFile{Version: weightsVersion}
	for _, l := range m.layers {
		wf.Layers = append(wf.Layers, layerRecord{
			Transposed: l.transposed,
			In:         l.in, Out: l.out,
			Kernel: l.k, Padding: l.pad,
			Weights: l.w, Bias: l.b,
		})
	}
	return cbor.Marshal(wf)
}

func (m *Model) UnmarshalBinary(data []byte) error {
	wf := weightsFile{}
	if err := cbor.Unmarshal(data, &wf); err != nil {
		return xerror.Errorf("unable to decode weights: %w", err)
	}
	if wf.Version != weightsVersion {
		return xerror.Errorf("unsupported weights version: %d", wf.Version)
	}

	layers := make([]layer, 0, len(wf.Layers))
	for _, r := range wf.Layers {
		layers = append(layers, layer{
			transposed: r.Transposed,
			in:         r.In, out: r.Out,
			k: r.Kernel, pad: r.Padding,
			w: r.Weights, b: r.Bias,
		})
	}

	loaded := Model{layers: layers}
	if err := loaded.validate(); err != nil {
		return err
	}
	*m = loaded
	return nil
}

func SaveWeights(fs afero.Fs, path string, m *Model) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return xerror.Errorf("unable to encode weights: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return xerror.Errorf("unable to write weights to %s: %w", path, err)
	}
	return nil
}

func LoadWeights(fs afero.Fs, path string) (*Model, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, xerror.Errorf("unable to read weights from %s: %w", path, err)
	}
	m := Model{}
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &m, nil
}
