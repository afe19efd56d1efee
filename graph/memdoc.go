// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"context"
	"fmt"
)

type memImage struct {
	data []byte
	mime string
}

// MemDoc is a fully in-memory Document. Host-library adapters load parsed
// files into it, and tests build documents with it directly.
type MemDoc struct {
	pool    *Pool
	catalog Dict
	info    Dict
	pages   []Ref
	text    map[int]string
	events  map[int][]ContentEvent
	images  map[Ref]memImage
	path    string
}

// NewMemDoc creates an empty document with a catalog and page-tree root.
func NewMemDoc() *MemDoc {
	m := &MemDoc{
		pool:   NewPool(),
		text:   make(map[int]string),
		events: make(map[int][]ContentEvent),
		images: make(map[Ref]memImage),
	}
	pages := Dict{"Type": Name("Pages"), "Kids": Array{}, "Count": 0}
	pagesRef := m.pool.Put(pages)
	m.catalog = Dict{"Type": Name("Catalog"), "Pages": pagesRef}
	m.pool.Put(m.catalog)
	m.info = Dict{}
	return m
}

func (m *MemDoc) Resolve(x any) any { return m.pool.Resolve(x) }

func (m *MemDoc) Catalog() Dict { return m.catalog }

func (m *MemDoc) Info() Dict { return m.info }

func (m *MemDoc) NumPages() int { return len(m.pages) }

func (m *MemDoc) Page(num int) Dict {
	if num < 1 || num > len(m.pages) {
		return nil
	}
	d, _ := DictOf(m, m.pages[num-1])
	return d
}

func (m *MemDoc) PageIndex(ref Ref) int {
	for i, r := range m.pages {
		if r == ref {
			return i + 1
		}
	}
	return 0
}

func (m *MemDoc) PageText(ctx context.Context, num int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if num < 1 || num > len(m.pages) {
		return "", fmt.Errorf("page %d out of range", num)
	}
	return m.text[num], nil
}

func (m *MemDoc) ReplayContent(ctx context.Context, num int, fn func(ContentEvent) error) error {
	if num < 1 || num > len(m.pages) {
		return fmt.Errorf("page %d out of range", num)
	}
	for _, ev := range m.events[num] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemDoc) ImageBytes(ref Ref) ([]byte, string, error) {
	img, ok := m.images[ref]
	if !ok {
		return nil, "", fmt.Errorf("no extractable bytes for image %d %d R", ref.Num, ref.Gen)
	}
	return img.data, img.mime, nil
}

func (m *MemDoc) Put(obj any) Ref { return m.pool.Put(obj) }

func (m *MemDoc) Path() string { return m.path }

// SetPath records the file path the document was loaded from.
func (m *MemDoc) SetPath(path string) { m.path = path }

// AddPage appends a page dictionary, wiring it into the page tree, and
// returns its reference.
func (m *MemDoc) AddPage(page Dict) Ref {
	if page == nil {
		page = Dict{}
	}
	if _, ok := page["Type"]; !ok {
		page["Type"] = Name("Page")
	}
	pagesRef, _ := RefOf(m.catalog["Pages"])
	page["Parent"] = pagesRef
	ref := m.pool.Put(page)
	m.pages = append(m.pages, ref)
	if pages, ok := DictOf(m, pagesRef); ok {
		kids, _ := ArrayOf(m, pages["Kids"])
		pages["Kids"] = append(kids, ref)
		pages["Count"] = len(m.pages)
	}
	return ref
}

// SetPageText sets the extracted plain text reported for a page.
func (m *MemDoc) SetPageText(num int, text string) { m.text[num] = text }

// SetPageEvents sets the content-stream events replayed for a page.
func (m *MemDoc) SetPageEvents(num int, events []ContentEvent) { m.events[num] = events }

// AddImage registers an image XObject with directly extractable bytes.
func (m *MemDoc) AddImage(data []byte, mime string) Ref {
	ref := m.pool.Put(&Stream{Dict: Dict{"Subtype": Name("Image")}, Data: data})
	m.images[ref] = memImage{data: data, mime: mime}
	return ref
}

// AddImageStub registers an image XObject with no extractable bytes, the
// shape vector-drawn form XObjects take.
func (m *MemDoc) AddImageStub() Ref {
	return m.pool.Put(&Stream{Dict: Dict{"Subtype": Name("Image")}})
}
