// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package graph holds the mutable PDF object-graph model the remediation
// engine operates on. The host document library loads a file into this model
// and persists it back; the engine only ever sees dictionaries, arrays and
// indirect references.
package graph

// Name is a PDF name object, stored without the leading slash.
type Name string

// Ref identifies an indirect object by object and generation number.
// The zero Ref refers to nothing.
type Ref struct {
	Num int
	Gen int
}

// IsZero reports whether the reference points at nothing.
func (r Ref) IsZero() bool {
	return r.Num == 0
}

// Dict is a PDF dictionary. Mutating it mutates the document.
type Dict map[Name]any

// Array is a PDF array.
type Array []any

// Stream is a PDF stream: a dictionary plus raw (already decoded) bytes.
type Stream struct {
	Dict Dict
	Data []byte
}

// Resolver dereferences indirect references. Non-reference values are
// returned unchanged, unknown references resolve to nil.
type Resolver interface {
	Resolve(x any) any
}

// Pool is an in-memory indirect-object table implementing Resolver.
type Pool struct {
	objs map[Ref]any
	next int
}

func NewPool() *Pool {
	return &Pool{objs: make(map[Ref]any), next: 1}
}

// Put stores obj under a freshly allocated reference.
func (p *Pool) Put(obj any) Ref {
	ref := Ref{Num: p.next, Gen: 0}
	p.next++
	p.objs[ref] = obj
	return ref
}

// Set stores obj under an explicit reference, claiming the object number.
func (p *Pool) Set(ref Ref, obj any) {
	if ref.Num >= p.next {
		p.next = ref.Num + 1
	}
	p.objs[ref] = obj
}

// Resolve follows references until a direct object is reached. Reference
// chains are legal but bounded, so a ref loop cannot hang the caller.
func (p *Pool) Resolve(x any) any {
	for depth := 0; depth < 32; depth++ {
		ref, ok := x.(Ref)
		if !ok {
			return x
		}
		x = p.objs[ref]
	}
	return nil
}

// DictOf resolves x and returns it as a dictionary. Stream dictionaries
// count as dictionaries.
func DictOf(r Resolver, x any) (Dict, bool) {
	switch v := r.Resolve(x).(type) {
	case Dict:
		return v, v != nil
	case *Stream:
		if v != nil {
			return v.Dict, v.Dict != nil
		}
	}
	return nil, false
}

// ArrayOf resolves x and returns it as an array.
func ArrayOf(r Resolver, x any) (Array, bool) {
	v, ok := r.Resolve(x).(Array)
	return v, ok
}

// IntOf resolves x and returns it as an integer.
func IntOf(r Resolver, x any) (int, bool) {
	switch v := r.Resolve(x).(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// FloatOf resolves x and returns it as a float.
func FloatOf(r Resolver, x any) (float64, bool) {
	switch v := r.Resolve(x).(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// NameOf resolves x and returns it as a name.
func NameOf(r Resolver, x any) (Name, bool) {
	v, ok := r.Resolve(x).(Name)
	return v, ok
}

// StringOf resolves x and returns it as a string.
func StringOf(r Resolver, x any) (string, bool) {
	v, ok := r.Resolve(x).(string)
	return v, ok
}

// RefOf returns x as a reference without resolving it.
func RefOf(x any) (Ref, bool) {
	v, ok := x.(Ref)
	return v, ok && !v.IsZero()
}

// Kid is one entry of a structure element's /K array decoded into its
// variant: a nested structure element, a bare marked-content id, or an
// object reference (OBJR). Exactly one variant is populated.
type Kid struct {
	Node Dict // nested structure element, nil otherwise
	Ref  Ref  // reference the node was reached through, if indirect
	MCID int  // marked-content id, -1 when absent
	Obj  Ref  // OBJR target, zero when absent
	Page Ref  // page context carried by the entry itself, zero when absent
}
