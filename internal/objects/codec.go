package objects

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // content addressing uses SHA-1 by design, not for security
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Blob is an opaque sequence of file bytes. It carries no path or mode.
type Blob struct {
	Content []byte
}

func (b *Blob) Kind() Kind { return KindBlob }

// TreeEntry is one (kind, digest, name) triple inside a Tree.
type TreeEntry struct {
	Kind   Kind
	Digest Digest
	Name   string
}

// Tree is a directory snapshot: an ordered set of entries. Encode always
// sorts entries by name so two trees with the same entry set encode
// identically regardless of construction order.
type Tree struct {
	Entries []TreeEntry
}

func (t *Tree) Kind() Kind { return KindTree }

// Signature is an author or committer identity with a point in time.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Encode renders a signature line as "Name <email> unix-seconds +HHMM".
func (s Signature) Encode() string {
	_, offset := s.When.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hh := offset / 3600
	mm := (offset % 3600) / 60
	return fmt.Sprintf("%s <%s> %d %s%02d%02d", s.Name, s.Email, s.When.Unix(), sign, hh, mm)
}

// ParseSignature parses a signature line of the form produced by Encode.
func ParseSignature(line string) (Signature, error) {
	lt := strings.Index(line, "<")
	gt := strings.Index(line, ">")
	if lt < 0 || gt < 0 || gt < lt {
		return Signature{}, fmt.Errorf("invalid signature line: %q", line)
	}
	name := strings.TrimSpace(line[:lt])
	email := strings.TrimSpace(line[lt+1 : gt])
	rest := strings.TrimSpace(line[gt+1:])
	fields := strings.Fields(rest)
	if len(fields) < 1 {
		return Signature{}, fmt.Errorf("invalid signature line: missing timestamp: %q", line)
	}
	unixTime, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid signature line: bad timestamp: %q", line)
	}
	loc := time.UTC
	if len(fields) >= 2 {
		if l := parseTimezone(fields[1]); l != nil {
			loc = l
		}
	}
	return Signature{Name: name, Email: email, When: time.Unix(unixTime, 0).In(loc)}, nil
}

func parseTimezone(tz string) *time.Location {
	if len(tz) != 5 {
		return nil
	}
	sign := 1
	switch tz[0] {
	case '-':
		sign = -1
	case '+':
	default:
		return nil
	}
	hh, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil
	}
	mm, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil
	}
	return time.FixedZone(tz, sign*(hh*3600+mm*60))
}

// Commit is an immutable snapshot record.
type Commit struct {
	Tree      Digest
	Parents   []Digest
	Author    Signature
	Committer Signature
	Message   string
}

func (c *Commit) Kind() Kind { return KindCommit }

// Encode produces the canonical "<kind> <size>\0<payload>" byte sequence
// for an object and the SHA-1 digest of that sequence.
func Encode(o Object) ([]byte, Digest, error) {
	var payload []byte
	switch v := o.(type) {
	case *Blob:
		payload = v.Content
	case *Tree:
		payload = encodeTreePayload(v)
	case *Commit:
		p, err := encodeCommitPayload(v)
		if err != nil {
			return nil, "", err
		}
		payload = p
	default:
		return nil, "", fmt.Errorf("encode: unsupported object type %T", o)
	}

	header := fmt.Sprintf("%s %d\x00", o.Kind().String(), len(payload))
	full := append([]byte(header), payload...)

	sum := sha1.Sum(full) //nolint:gosec // content addressing, not a security boundary
	return full, NewDigestFromBytes(sum), nil
}

func encodeTreePayload(t *Tree) []byte {
	entries := make([]TreeEntry, len(t.Entries))
	copy(entries, t.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "%s %s %s\n", e.Kind.String(), e.Digest, e.Name)
	}
	return buf.Bytes()
}

func encodeCommitPayload(c *Commit) ([]byte, error) {
	if c.Tree == "" {
		return nil, fmt.Errorf("encode commit: missing tree")
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author.Encode())
	fmt.Fprintf(&buf, "committer %s\n", c.Committer.Encode())
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes(), nil
}

// Decode parses raw stored bytes (header + payload) into a typed Object.
// expect, if not KindNone, requires the decoded kind to match.
func Decode(raw []byte, expect Kind) (Object, Digest, error) {
	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return nil, "", fmt.Errorf("decode: missing header terminator")
	}
	header := string(raw[:nul])
	payload := raw[nul+1:]

	sp := strings.IndexByte(header, ' ')
	if sp < 0 {
		return nil, "", fmt.Errorf("decode: malformed header %q", header)
	}
	kindStr, sizeStr := header[:sp], header[sp+1:]
	kind := ParseKind(kindStr)
	if kind == KindNone {
		return nil, "", fmt.Errorf("decode: unknown object kind %q", kindStr)
	}
	if expect != KindNone && expect != kind {
		return nil, "", fmt.Errorf("decode: expected %s, got %s", expect, kind)
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return nil, "", fmt.Errorf("decode: malformed size %q", sizeStr)
	}
	if size != len(payload) {
		return nil, "", fmt.Errorf("decode: declared size %d does not match payload length %d", size, len(payload))
	}

	sum := sha1.Sum(raw) //nolint:gosec // content addressing, not a security boundary
	digest := NewDigestFromBytes(sum)

	var obj Object
	switch kind {
	case KindBlob:
		content := make([]byte, len(payload))
		copy(content, payload)
		obj = &Blob{Content: content}
	case KindTree:
		t, err := decodeTreePayload(payload)
		if err != nil {
			return nil, "", err
		}
		obj = t
	case KindCommit:
		c, err := decodeCommitPayload(payload)
		if err != nil {
			return nil, "", err
		}
		obj = c
	}
	return obj, digest, nil
}

func decodeTreePayload(payload []byte) (*Tree, error) {
	t := &Tree{}
	if len(payload) == 0 {
		return t, nil
	}
	seen := make(map[string]struct{})
	lines := strings.Split(strings.TrimSuffix(string(payload), "\n"), "\n")
	for _, line := range lines {
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("decode tree: malformed entry %q", line)
		}
		kind := ParseKind(parts[0])
		if kind != KindBlob && kind != KindTree {
			return nil, fmt.Errorf("decode tree: invalid entry kind %q", parts[0])
		}
		digest, err := NewDigest(parts[1])
		if err != nil {
			return nil, fmt.Errorf("decode tree: %w", err)
		}
		name := parts[2]
		if name == "" {
			return nil, fmt.Errorf("decode tree: empty entry name")
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("decode tree: duplicate entry name %q", name)
		}
		seen[name] = struct{}{}
		t.Entries = append(t.Entries, TreeEntry{Kind: kind, Digest: digest, Name: name})
	}
	return t, nil
}

func decodeCommitPayload(payload []byte) (*Commit, error) {
	text := string(payload)
	headerPart, message, found := strings.Cut(text, "\n\n")
	if !found {
		return nil, fmt.Errorf("decode commit: missing blank line before message")
	}

	c := &Commit{Message: message}
	for _, line := range strings.Split(headerPart, "\n") {
		if line == "" {
			continue
		}
		key, rest, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("decode commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			d, err := NewDigest(rest)
			if err != nil {
				return nil, fmt.Errorf("decode commit: %w", err)
			}
			c.Tree = d
		case "parent":
			d, err := NewDigest(rest)
			if err != nil {
				return nil, fmt.Errorf("decode commit: %w", err)
			}
			c.Parents = append(c.Parents, d)
		case "author":
			sig, err := ParseSignature(rest)
			if err != nil {
				return nil, fmt.Errorf("decode commit: %w", err)
			}
			c.Author = sig
		case "committer":
			sig, err := ParseSignature(rest)
			if err != nil {
				return nil, fmt.Errorf("decode commit: %w", err)
			}
			c.Committer = sig
		default:
			return nil, fmt.Errorf("decode commit: unknown header key %q", key)
		}
	}
	if c.Tree == "" {
		return nil, fmt.Errorf("decode commit: missing tree")
	}
	if c.Author.Name == "" {
		return nil, fmt.Errorf("decode commit: missing author")
	}
	if c.Committer.Name == "" {
		return nil, fmt.Errorf("decode commit: missing committer")
	}
	return c, nil
}
