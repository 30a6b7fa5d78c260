// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const maxSummary = 240

// LooksLikeHTML reports whether body seems to be a markup document rather
// than structured data.
func LooksLikeHTML(body []byte) bool {
	head := bytes.ToLower(body[:min(len(body), 4096)])

	return bytes.Contains(head, []byte("<html")) ||
		bytes.HasPrefix(bytes.TrimSpace(head), []byte("<!doctype html"))
}

// Node2string appends the text content of n to sb, one space between text
// nodes. Script and style elements are skipped.
func Node2string(n *html.Node, sb *strings.Builder) {
	switch {
	case n.Type == html.TextNode:
		tmp := strings.Join(strings.Fields(n.Data), " ")
		if tmp == "" {
			return
		}

		if sb.Len() != 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(tmp)
	case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
		return
	default:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			Node2string(child, sb)
		}
	}
}

// AsNode parses r, decoded according to contentType, as an HTML node.
func AsNode(r io.Reader, contentType string) (*html.Node, error) {
	rr, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}

	n, err := html.Parse(rr)
	if err != nil {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return n, nil
}

func find(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := find(child, tag); found != nil {
			return found
		}
	}

	return nil
}

// Summary returns a short human readable text for an HTML page: the body
// text, or the title when the body has none.
func Summary(body []byte, contentType string) (string, error) {
	root, err := AsNode(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	for _, tag := range []string{"body", "title"} {
		if n := find(root, tag); n != nil {
			Node2string(n, &sb)
		}

		if sb.Len() > 0 {
			break
		}
	}

	s := sb.String()
	if r := []rune(s); len(r) > maxSummary {
		s = string(r[:maxSummary]) + "…"
	}

	return s, nil
}
