// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compat

import (
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// imagesColumn is the header of the column holding image references.
const imagesColumn = "images"

var parser = goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()

// ParseImages extracts the image references from every markdown table
// with an Images column. Cells may hold several references separated by
// <br>. The result is sorted and free of duplicates.
func ParseImages(source []byte) []string {
	document := parser.Parse(text.NewReader(source))

	var images []string
	ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Kind() != extast.KindTable {
			return ast.WalkContinue, nil
		}
		images = append(images, tableImages(node, source)...)
		return ast.WalkSkipChildren, nil
	})

	images = lo.Uniq(images)
	slices.Sort(images)
	return images
}

// tableImages returns the Images column of one table, or nil when the
// table has no such column.
func tableImages(table ast.Node, source []byte) []string {
	column := -1
	var images []string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		switch row.Kind() {
		case extast.KindTableHeader:
			for index, cell := range rowCells(row) {
				if strings.EqualFold(strings.TrimSpace(strings.Join(cellItems(cell, source), " ")), imagesColumn) {
					column = index
				}
			}
		case extast.KindTableRow:
			if column < 0 {
				return nil
			}
			cells := rowCells(row)
			if column < len(cells) {
				images = append(images, cellItems(cells[column], source)...)
			}
		}
	}
	return images
}

func rowCells(row ast.Node) []ast.Node {
	var cells []ast.Node
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if cell.Kind() == extast.KindTableCell {
			cells = append(cells, cell)
		}
	}
	return cells
}

// cellItems splits a cell's text at raw HTML (the <br> separators) and
// returns the non-empty trimmed pieces.
func cellItems(cell ast.Node, source []byte) []string {
	var items []string
	var current strings.Builder
	flush := func() {
		if item := strings.TrimSpace(current.String()); item != "" {
			items = append(items, item)
		}
		current.Reset()
	}

	ast.Walk(cell, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := node.(type) {
		case *ast.Text:
			current.Write(node.Segment.Value(source))
		case *ast.RawHTML:
			flush()
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	flush()
	return items
}
