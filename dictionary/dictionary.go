// Package dictionary implements the mmap container and load/verify/cache
// control of spec.md §4.1: magic-byte gating, alignment handling, and the
// metadata-hash cache that lets repeat loads of the same dictionary skip
// expensive structural validation.
package dictionary

import (
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/himawari-nlp/vibratio/archived"
	"github.com/himawari-nlp/vibratio/charprop"
	"github.com/himawari-nlp/vibratio/connector"
	"github.com/himawari-nlp/vibratio/lex"
)

// Mode selects how much work Load does before returning (spec.md §4.1).
type Mode int

const (
	// Validate runs full structural validation over the archived graph.
	Validate Mode = iota
	// TrustCache skips validation if a cache marker proves the file's
	// identity was already validated; otherwise it validates and
	// writes a marker for next time.
	TrustCache
)

const defaultValidationCacheSize = 256

var sharedCache = newValidationCache(defaultValidationCacheSize)

// Dictionary is the immutable bundle of spec.md §3: system lexicon
// (required), optional user lexicon, connector, optional ID mapper,
// character property table, and unknown-word handler. It is either
// borrowed from a mapped region or fully owned (built in memory); both
// cases share the exact same accessor surface.
type Dictionary struct {
	owner container // nil for a purely in-memory (non-archived) dictionary
	view  *archived.View
}

// SystemLexicon, UserLexicon, UnkLexicon expose the three lexicon
// namespaces. UserLexicon may be nil.
func (d *Dictionary) SystemLexicon() *lex.Lexicon { return d.view.System }
func (d *Dictionary) UserLexicon() *lex.Lexicon   { return d.view.User }
func (d *Dictionary) UnkLexicon() *lex.Lexicon    { return d.view.Unk }

// Connector, IdMapper, CharProp, UnkHandler expose the remaining
// accessor primitives of spec.md §4.2.
func (d *Dictionary) Connector() connector.Connector         { return d.view.Connector }
func (d *Dictionary) IdMapper() *connector.IdMapper          { return d.view.IdMapper }
func (d *Dictionary) CharProp() *charprop.Table              { return d.view.CharProp }
func (d *Dictionary) UnkHandler() *charprop.UnknownHandler   { return d.view.UnkHandler }

// WordParam dispatches on lex_type to find the owning lexicon (spec.md
// §4.2's "word_param(WordIdx) dispatches on lex_type").
func (d *Dictionary) WordParam(idx lex.WordIdx) (lex.WordParam, error) {
	lx, err := d.lexiconFor(idx.Lex)
	if err != nil {
		return lex.WordParam{}, err
	}
	return lx.WordParam(idx.Id), nil
}

// WordFeature dispatches on lex_type the same way WordParam does.
func (d *Dictionary) WordFeature(idx lex.WordIdx) (string, error) {
	lx, err := d.lexiconFor(idx.Lex)
	if err != nil {
		return "", err
	}
	return lx.Feature(idx.Id), nil
}

func (d *Dictionary) lexiconFor(typ lex.LexType) (*lex.Lexicon, error) {
	var lx *lex.Lexicon
	switch typ {
	case lex.System:
		lx = d.view.System
	case lex.User:
		lx = d.view.User
	case lex.Unknown:
		lx = d.view.Unk
	default:
		return nil, &Error{Kind: InvalidState, Msg: fmt.Sprintf("unknown lex_type %d", typ)}
	}
	if lx == nil {
		return nil, &Error{Kind: InvalidState, Msg: fmt.Sprintf("lex_type %s has no lexicon loaded", typ)}
	}
	return lx, nil
}

// Close releases the underlying container (the memory map, or a no-op
// for an owned/buffer-backed dictionary). A Dictionary must not be
// used after Close.
func (d *Dictionary) Close() error {
	if d.owner == nil {
		return nil
	}
	return d.owner.Close()
}

// Load implements spec.md §4.1's full algorithm.
func Load(path string, mode Mode) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(Io, "opening dictionary file", err)
	}
	head := make([]byte, len(Magic))
	n, err := f.Read(head)
	f.Close()
	if err != nil && n == 0 {
		return nil, newError(Io, "reading magic bytes", err)
	}
	if err := checkMagic(head[:n]); err != nil {
		return nil, err
	}

	mc, err := openMmap(path)
	if err != nil {
		return nil, newError(Io, "mapping dictionary file", err)
	}
	full := mc.Bytes()
	if len(full) < DataStart {
		mc.Close()
		return nil, newError(InvalidArgument, "file too small for header", nil)
	}
	blob := full[DataStart:]

	hash, herr := metadataHash(path)
	localDir, globalDir := localCacheDir(path), globalCacheDir()

	if mode == TrustCache && herr == nil && sharedCache.trusted(hash, localDir, globalDir) {
		glog.V(1).Infof("dictionary: trusting cached validation for %s (hash %s)", path, hash)
		return fromValidated(mc, blob)
	}

	owner, root, err := validateOrRealign(mc, blob)
	if err != nil {
		mc.Close()
		glog.Warningf("dictionary: structural validation failed for %s: %v", path, err)
		return nil, newError(ValidationFailed, "structural validation failed", err)
	}
	if mode == TrustCache && herr == nil {
		if err := sharedCache.markValidated(hash, globalDir); err != nil {
			glog.Warningf("dictionary: failed writing cache marker for %s: %v", path, err)
		}
	}
	view, err := archived.Build(owner.Bytes(), root)
	if err != nil {
		owner.Close()
		return nil, newError(InvalidState, "building accessors over validated archive", err)
	}
	return &Dictionary{owner: owner, view: view}, nil
}

// fromValidated is the TrustCache fast path: skip ValidateRoot and go
// straight to Build, trusting the marker that proved this file's
// identity was validated before.
func fromValidated(mc *mmapContainer, blob []byte) (*Dictionary, error) {
	if !isAligned16(blob) {
		buf := newAlignedBuffer(blob)
		mc.Close()
		root, err := archived.StructAt[archived.RootHeader](buf.Bytes(), 0)
		if err != nil {
			return nil, newError(InvalidState, "reading root header", err)
		}
		view, err := archived.Build(buf.Bytes(), root)
		if err != nil {
			return nil, newError(InvalidState, "building accessors from cache", err)
		}
		return &Dictionary{owner: buf, view: view}, nil
	}
	root, err := archived.StructAt[archived.RootHeader](blob, 0)
	if err != nil {
		mc.Close()
		return nil, newError(InvalidState, "reading root header", err)
	}
	view, err := archived.Build(blob, root)
	if err != nil {
		mc.Close()
		return nil, newError(InvalidState, "building accessors from cache", err)
	}
	return &Dictionary{owner: mc, view: view}, nil
}

// validateOrRealign runs ValidateRoot; if blob is misaligned it copies
// into a 16-byte-aligned buffer and re-validates there (spec.md §4.1
// step 6, §9's "alignment fallback").
func validateOrRealign(mc *mmapContainer, blob []byte) (container, *archived.RootHeader, error) {
	if isAligned16(blob) {
		root, err := archived.ValidateRoot(blob)
		if err == nil {
			return mc, root, nil
		}
		return nil, nil, err
	}
	glog.V(1).Infof("dictionary: archived region misaligned, copying into aligned buffer")
	buf := newAlignedBuffer(blob)
	root, err := archived.ValidateRoot(buf.Bytes())
	if err != nil {
		return nil, nil, err
	}
	mc.Close()
	return buf, root, nil
}

// LoadUnchecked implements spec.md §6's Dictionary::load_unchecked:
// skips both the magic check and structural validation entirely. The
// caller asserts the file's integrity.
func LoadUnchecked(path string) (*Dictionary, error) {
	mc, err := openMmap(path)
	if err != nil {
		return nil, newError(Io, "mapping dictionary file", err)
	}
	full := mc.Bytes()
	if len(full) < DataStart {
		mc.Close()
		return nil, newError(InvalidArgument, "file too small for header", nil)
	}
	blob := full[DataStart:]
	var owner container = mc
	if !isAligned16(blob) {
		buf := newAlignedBuffer(blob)
		mc.Close()
		owner = buf
		blob = buf.Bytes()
	}
	root, err := archived.StructAt[archived.RootHeader](blob, 0)
	if err != nil {
		owner.Close()
		return nil, newError(InvalidState, "reading root header", err)
	}
	view, err := archived.Build(blob, root)
	if err != nil {
		owner.Close()
		return nil, newError(InvalidState, "building accessors", err)
	}
	return &Dictionary{owner: owner, view: view}, nil
}

// NewOwned builds a Dictionary directly from in-memory components,
// with no archived backing at all (spec.md §3's "fully owned (built
// in memory)" case, used by lex.Builder-driven construction and by
// tests that never touch the filesystem).
func NewOwned(system, user, unk *lex.Lexicon, conn connector.Connector, mapper *connector.IdMapper, table *charprop.Table, handler *charprop.UnknownHandler) *Dictionary {
	return &Dictionary{view: &archived.View{
		System: system, User: user, Unk: unk,
		Connector: conn, IdMapper: mapper,
		CharProp: table, UnkHandler: handler,
	}}
}

// WriteTo serializes the dictionary to path in the on-disk format of
// spec.md §6, for the round-trip invariant of §8 (load(write(D))
// tokenizes identically to D).
func (d *Dictionary) WriteTo(path string) error {
	region, err := archived.WriteRoot(d.view.System, d.view.User, d.view.Unk, d.view.Connector, d.view.IdMapper, d.view.CharProp, d.view.UnkHandler)
	if err != nil {
		return newError(InvalidState, "serializing archived region", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return newError(Io, "creating output file", err)
	}
	defer f.Close()
	if _, err := f.Write(header()); err != nil {
		return newError(Io, "writing file header", err)
	}
	if _, err := f.Write(region); err != nil {
		return newError(Io, "writing archived region", err)
	}
	return nil
}
