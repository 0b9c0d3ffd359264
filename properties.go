package tmx

import (
	"encoding/json"
	"sort"
	"strconv"
)

const (
	// Property types
	// see doc.mapeditor.org/en/stable/reference/tmx-map-format/#properties
	PropString = "string"
	PropInt    = "int"
	PropFloat  = "float"
	PropBool   = "bool"
)

// Properties holds the <properties> of some map element. A key has exactly
// one type; setting it with another type replaces it.
type Properties struct {
	ints    map[string]int
	floats  map[string]float64
	strings map[string]string
	bools   map[string]bool
}

// NewProperties returns an empty properties
func NewProperties() *Properties {
	return &Properties{
		ints:    map[string]int{},
		floats:  map[string]float64{},
		strings: map[string]string{},
		bools:   map[string]bool{},
	}
}

// Merge properties `o` into this properties
func (p *Properties) Merge(o *Properties) *Properties {
	if o == nil {
		return p
	}
	for k, v := range o.ints {
		p.SetInt(k, v)
	}
	for k, v := range o.floats {
		p.SetFloat(k, v)
	}
	for k, v := range o.strings {
		p.SetString(k, v)
	}
	for k, v := range o.bools {
		p.SetBool(k, v)
	}
	return p
}

// Len returns the number of set keys
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.ints) + len(p.floats) + len(p.strings) + len(p.bools)
}

// Keys returns all set keys, sorted.
func (p *Properties) Keys() []string {
	keys := []string{}
	if p == nil {
		return keys
	}
	for k := range p.ints {
		keys = append(keys, k)
	}
	for k := range p.floats {
		keys = append(keys, k)
	}
	for k := range p.strings {
		keys = append(keys, k)
	}
	for k := range p.bools {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Type returns the declared type of `key` or "" if it isn't set.
func (p *Properties) Type(key string) string {
	if _, ok := p.ints[key]; ok {
		return PropInt
	}
	if _, ok := p.floats[key]; ok {
		return PropFloat
	}
	if _, ok := p.bools[key]; ok {
		return PropBool
	}
	if _, ok := p.strings[key]; ok {
		return PropString
	}
	return ""
}

// Value returns the value of `key` as whatever type it was declared as.
func (p *Properties) Value(key string) (interface{}, bool) {
	switch p.Type(key) {
	case PropInt:
		return p.ints[key], true
	case PropFloat:
		return p.floats[key], true
	case PropBool:
		return p.bools[key], true
	case PropString:
		return p.strings[key], true
	}
	return nil, false
}

// set coerces a raw <property> value according to its declared type.
// Anything other than int, float, bool is kept as a string.
func (p *Properties) set(name, value, kind string) {
	switch kind {
	case PropInt:
		v, _ := strconv.ParseInt(value, 10, 64)
		p.SetInt(name, int(v))
	case PropFloat:
		v, _ := strconv.ParseFloat(value, 64)
		p.SetFloat(name, v)
	case PropBool:
		p.SetBool(name, value == "true")
	default:
		p.SetString(name, value)
	}
}

func (p *Properties) String(key string) (string, bool) {
	v, ok := p.strings[key]
	return v, ok
}

func (p *Properties) SetString(key, value string) {
	p.clear(key)
	p.strings[key] = value
}

func (p *Properties) Int(key string) (int, bool) {
	v, ok := p.ints[key]
	return v, ok
}

func (p *Properties) SetInt(key string, value int) {
	p.clear(key)
	p.ints[key] = value
}

func (p *Properties) Float(key string) (float64, bool) {
	v, ok := p.floats[key]
	return v, ok
}

func (p *Properties) SetFloat(key string, value float64) {
	p.clear(key)
	p.floats[key] = value
}

func (p *Properties) Bool(key string) (bool, bool) {
	v, ok := p.bools[key]
	return v, ok
}

func (p *Properties) SetBool(key string, value bool) {
	p.clear(key)
	p.bools[key] = value
}

func (p *Properties) clear(key string) {
	delete(p.ints, key)
	delete(p.floats, key)
	delete(p.strings, key)
	delete(p.bools, key)
}

// propertyBlock is how we write properties out (json, yaml, the tile store)
type propertyBlock struct {
	I map[string]int     `json:"I,omitempty" yaml:"int,omitempty"`
	F map[string]float64 `json:"F,omitempty" yaml:"float,omitempty"`
	S map[string]string  `json:"S,omitempty" yaml:"string,omitempty"`
	B map[string]bool    `json:"B,omitempty" yaml:"bool,omitempty"`
}

func (p *Properties) block() propertyBlock {
	return propertyBlock{I: p.ints, F: p.floats, S: p.strings, B: p.bools}
}

// MarshalJSON implements json.Marshaler
func (p *Properties) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.block())
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Properties) UnmarshalJSON(data []byte) error {
	blk := propertyBlock{}
	if err := json.Unmarshal(data, &blk); err != nil {
		return err
	}

	*p = *NewProperties()
	for k, v := range blk.I {
		p.SetInt(k, v)
	}
	for k, v := range blk.F {
		p.SetFloat(k, v)
	}
	for k, v := range blk.S {
		p.SetString(k, v)
	}
	for k, v := range blk.B {
		p.SetBool(k, v)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (p *Properties) MarshalYAML() (interface{}, error) {
	return p.block(), nil
}
