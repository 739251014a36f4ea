package undo

import (
	"bytes"
	"fmt"
	"io/fs"
)

const (
	versionCurrent   = 3
	headerMagic      = 0x5fd0
	entryMagic       = 0xf518
	entryEndMagic    = 0x3581
	endMagic         = 0xe7aa
)

var startMagic = []byte("Vim\x9fUnDo\xe5")

// Persistence computes/verifies the buffer hash and writes/reads the
// undo file, pointer-swizzling graph links by sequence number (§4.4,
// §6.2).
type Persistence struct {
	fs    FileSystem
	hash  Hasher
	codec BinaryCodec
	fsync bool
	perm  fs.FileMode
}

// NewPersistence binds a Persistence to its FileSystem and Hasher
// collaborators. When fsync is true, Write calls FileSystem.Fsync
// after writing.
func NewPersistence(filesystem FileSystem, hasher Hasher, fsync bool) *Persistence {
	return &Persistence{fs: filesystem, hash: hasher, fsync: fsync, perm: 0o600}
}

// UndoFilePath resolves the on-disk undo file path for a buffer file,
// the `undofile(name)` operation named in spec.md §6.3: the sidecar
// file lives alongside name with a ".un" suffix appended. Exposed here
// (rather than inlined in a single host) so every host embedding this
// engine resolves the sidecar path the same way.
func UndoFilePath(name string) string {
	return name + ".un"
}

// Write serializes t (after forcing a sync) to path, verified against
// a hash of lines. On any I/O failure the partial file is removed.
func (p *Persistence) Write(path string, t *UndoTree, lines []string) error {
	t.Sync()

	var buf bytes.Buffer
	c := p.codec

	buf.Write(startMagic)
	_ = c.WriteU16(&buf, versionCurrent)

	h := p.hash.HashLines(lines)
	buf.Write(h[:])

	_ = c.WriteU32(&buf, uint32(len(lines)))

	uline, lnum, col, ok := t.SavedLine()
	if ok {
		_ = c.WriteString(&buf, uline)
		_ = c.WriteU32(&buf, lnum)
		_ = c.WriteU32(&buf, col)
	} else {
		_ = c.WriteString(&buf, "")
		_ = c.WriteU32(&buf, 0)
		_ = c.WriteU32(&buf, 0)
	}

	_ = c.WriteU32(&buf, t.oldHead)
	_ = c.WriteU32(&buf, t.newHead)
	_ = c.WriteU32(&buf, t.curHead)

	_ = c.WriteU32(&buf, t.numhead)
	_ = c.WriteU32(&buf, t.seqLast)
	_ = c.WriteU32(&buf, t.seqCur)
	_ = c.WriteU64(&buf, uint64(t.timeCur))

	saveNrLast := make([]byte, 4)
	putU32(saveNrLast, t.saveNrLast)
	if err := c.WriteOptFields(&buf, []OptField{{Tag: OptTagLastSaveNr, Payload: saveNrLast}}); err != nil {
		return &IOError{Op: "write-optfields", Err: err}
	}

	for _, hdr := range t.allHeaders() {
		if err := p.writeHeader(&buf, hdr); err != nil {
			return &IOError{Op: "write-header", Err: err}
		}
	}

	_ = c.WriteU16(&buf, endMagic)

	if err := p.fs.WriteFile(path, buf.Bytes(), p.perm); err != nil {
		_ = p.fs.Remove(path)
		return &IOError{Op: "write", Err: err}
	}
	if p.fsync {
		if err := p.fs.Fsync(path); err != nil {
			_ = p.fs.Remove(path)
			return &IOError{Op: "fsync", Err: err}
		}
	}
	return nil
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func (p *Persistence) writeHeader(buf *bytes.Buffer, h *UndoHeader) error {
	c := p.codec
	_ = c.WriteU16(buf, headerMagic)
	_ = c.WriteU32(buf, h.Next)
	_ = c.WriteU32(buf, h.Prev)
	_ = c.WriteU32(buf, h.AltNext)
	_ = c.WriteU32(buf, h.AltPrev)
	_ = c.WriteU32(buf, h.Seq)
	_ = c.WritePos(buf, h.Cursor)
	_ = c.WriteU32(buf, uint32(h.CursorVCol))
	_ = c.WriteU16(buf, flagsToU16(h.Flags))
	for _, m := range h.NamedMarks {
		_ = c.WritePos(buf, m)
	}
	_ = c.WritePos(buf, h.Visual.Start)
	_ = c.WritePos(buf, h.Visual.End)
	_ = c.WriteU32(buf, h.Visual.Mode)
	_ = c.WriteU32(buf, h.Visual.Curswant)
	_ = c.WriteU64(buf, uint64(h.Time))
	if err := c.WriteOptFields(buf, nil); err != nil {
		return err
	}

	for _, e := range h.Entries {
		_ = c.WriteU16(buf, entryMagic)
		_ = c.WriteU32(buf, e.Top)
		_ = c.WriteU32(buf, e.Bot)
		_ = c.WriteU32(buf, e.LCount)
		_ = c.WriteU32(buf, e.Size)
		for _, line := range e.Lines {
			_ = c.WriteString(buf, line)
		}
	}
	_ = c.WriteU16(buf, entryEndMagic)

	for _, em := range h.Extmarks {
		_ = c.WriteU16(buf, entryMagic)
		_ = c.WriteU32(buf, em.Kind)
		_ = c.WriteU32(buf, uint32(len(em.Payload)))
		_ = c.WriteBytes(buf, em.Payload)
	}
	_ = c.WriteU16(buf, entryEndMagic)
	return nil
}

func flagsToU16(f HeaderFlags) uint16 {
	var v uint16
	if f.Changed {
		v |= 1
	}
	if f.EmptyBuf {
		v |= 2
	}
	if f.Reload {
		v |= 4
	}
	return v
}

func flagsFromU16(v uint16) HeaderFlags {
	return HeaderFlags{
		Changed:  v&1 != 0,
		EmptyBuf: v&2 != 0,
		Reload:   v&4 != 0,
	}
}

// Read loads the undo file at path, verifies it against a hash of
// currentLines, and — only once the whole file has been parsed
// successfully — replaces into's contents atomically. On any error
// into is left untouched.
func (p *Persistence) Read(path string, into *UndoTree, currentLines []string) error {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return &IOError{Op: "read", Err: err}
	}
	r := bytes.NewReader(data)
	c := p.codec

	magic, err := c.ReadBytes(r, len(startMagic))
	if err != nil || !bytes.Equal(magic, startMagic) {
		return &CorruptFileError{Op: "start-magic", Err: fmt.Errorf("bad magic")}
	}
	version, err := c.ReadU16(r)
	if err != nil {
		return &CorruptFileError{Op: "version", Err: err}
	}
	if version != versionCurrent {
		return &CorruptFileError{Op: "version", Err: fmt.Errorf("unsupported version %d", version)}
	}

	storedHash, err := c.ReadBytes(r, 32)
	if err != nil {
		return &CorruptFileError{Op: "hash", Err: err}
	}
	lineCount, err := c.ReadU32(r)
	if err != nil {
		return &CorruptFileError{Op: "line-count", Err: err}
	}

	wantHash := p.hash.HashLines(currentLines)
	if !bytes.Equal(storedHash, wantHash[:]) || int(lineCount) != len(currentLines) {
		return ErrBufferContentsChanged
	}

	uLine, err := c.ReadString(r)
	if err != nil {
		return &CorruptFileError{Op: "u-line", Err: err}
	}
	uLnum, err := c.ReadU32(r)
	if err != nil {
		return &CorruptFileError{Op: "u-line-lnum", Err: err}
	}
	uCol, err := c.ReadU32(r)
	if err != nil {
		return &CorruptFileError{Op: "u-line-col", Err: err}
	}

	oldHeadSeq, _ := c.ReadU32(r)
	newHeadSeq, _ := c.ReadU32(r)
	curHeadSeq, _ := c.ReadU32(r)
	numhead, _ := c.ReadU32(r)
	seqLast, _ := c.ReadU32(r)
	seqCur, _ := c.ReadU32(r)
	timeCur64, err := c.ReadU64(r)
	if err != nil {
		return &CorruptFileError{Op: "global-state", Err: err}
	}

	opts, err := c.ReadOptFields(r)
	if err != nil {
		return &CorruptFileError{Op: "optfields", Err: err}
	}
	var saveNrLast uint32
	for _, f := range opts {
		if f.Tag == OptTagLastSaveNr && len(f.Payload) == 4 {
			saveNrLast = u32From(f.Payload)
		}
	}

	built := &UndoTree{
		headers:    make(map[uint32]*UndoHeader),
		walkMarks:  make(map[uint32]uint32),
		synced:     true,
		undolevels: into.undolevels,
		store:      into.store,
		cursor:     into.cursor,
		clock:      into.clock,
	}
	built.linePtr = uLine
	built.lineLnum = uLnum
	built.lineColnr = uCol
	built.numhead = numhead
	built.seqLast = seqLast
	built.seqCur = seqCur
	built.timeCur = int64(timeCur64)
	built.saveNrLast = saveNrLast
	built.saveNrCur = saveNrLast

	for {
		tag, err := c.ReadU16(r)
		if err != nil {
			return &CorruptFileError{Op: "header-tag", Err: err}
		}
		if tag == endMagic {
			break
		}
		if tag != headerMagic {
			return &CorruptFileError{Op: "header-magic", Err: fmt.Errorf("unexpected tag 0x%x", tag)}
		}
		h, err := p.readHeader(r)
		if err != nil {
			return &CorruptFileError{Op: "header", Err: err}
		}
		if _, dup := built.headers[h.Seq]; dup {
			return &CorruptFileError{Op: "header", Err: fmt.Errorf("duplicate seq %d", h.Seq)}
		}
		built.headers[h.Seq] = h
	}

	for _, seq := range []uint32{oldHeadSeq, newHeadSeq, curHeadSeq} {
		if seq != 0 && built.headers[seq] == nil {
			return &CorruptFileError{Op: "resolve-seq", Err: fmt.Errorf("unresolved seq %d", seq)}
		}
	}
	for seq, h := range built.headers {
		for _, link := range []uint32{h.Prev, h.Next, h.AltPrev, h.AltNext} {
			if link != 0 && built.headers[link] == nil {
				return &CorruptFileError{Op: "resolve-seq", Err: fmt.Errorf("header %d: unresolved link %d", seq, link)}
			}
		}
	}

	built.oldHead = oldHeadSeq
	built.newHead = newHeadSeq
	built.curHead = curHeadSeq

	into.installFrom(built)
	return nil
}

func u32From(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func (p *Persistence) readHeader(r *bytes.Reader) (*UndoHeader, error) {
	c := p.codec
	h := &UndoHeader{GetbotIdx: -1}

	next, err := c.ReadU32(r)
	if err != nil {
		return nil, err
	}
	prev, err := c.ReadU32(r)
	if err != nil {
		return nil, err
	}
	altNext, err := c.ReadU32(r)
	if err != nil {
		return nil, err
	}
	altPrev, err := c.ReadU32(r)
	if err != nil {
		return nil, err
	}
	seq, err := c.ReadU32(r)
	if err != nil {
		return nil, err
	}
	cursor, err := c.ReadPos(r)
	if err != nil {
		return nil, err
	}
	vcol, err := c.ReadU32(r)
	if err != nil {
		return nil, err
	}
	flags, err := c.ReadU16(r)
	if err != nil {
		return nil, err
	}
	for i := range h.NamedMarks {
		h.NamedMarks[i], err = c.ReadPos(r)
		if err != nil {
			return nil, err
		}
	}
	visStart, err := c.ReadPos(r)
	if err != nil {
		return nil, err
	}
	visEnd, err := c.ReadPos(r)
	if err != nil {
		return nil, err
	}
	visMode, err := c.ReadU32(r)
	if err != nil {
		return nil, err
	}
	visCurswant, err := c.ReadU32(r)
	if err != nil {
		return nil, err
	}
	timeVal, err := c.ReadU64(r)
	if err != nil {
		return nil, err
	}
	if _, err := c.ReadOptFields(r); err != nil {
		return nil, err
	}

	h.Next, h.Prev, h.AltNext, h.AltPrev = next, prev, altNext, altPrev
	h.Seq = seq
	h.Cursor = cursor
	h.CursorVCol = int32(vcol)
	h.Flags = flagsFromU16(flags)
	h.Visual = VisualRegion{Start: visStart, End: visEnd, Mode: visMode, Curswant: visCurswant}
	h.Time = int64(timeVal)

	for {
		tag, err := c.ReadU16(r)
		if err != nil {
			return nil, err
		}
		if tag == entryEndMagic {
			break
		}
		if tag != entryMagic {
			return nil, fmt.Errorf("unexpected entry tag 0x%x", tag)
		}
		top, err := c.ReadU32(r)
		if err != nil {
			return nil, err
		}
		bot, err := c.ReadU32(r)
		if err != nil {
			return nil, err
		}
		lcount, err := c.ReadU32(r)
		if err != nil {
			return nil, err
		}
		size, err := c.ReadU32(r)
		if err != nil {
			return nil, err
		}
		lines := make([]string, size)
		for i := range lines {
			lines[i], err = c.ReadString(r)
			if err != nil {
				return nil, err
			}
		}
		h.Entries = append(h.Entries, &UndoEntry{Top: top, Bot: bot, LCount: lcount, Size: size, Lines: lines})
	}

	for {
		tag, err := c.ReadU16(r)
		if err != nil {
			return nil, err
		}
		if tag == entryEndMagic {
			break
		}
		if tag != entryMagic {
			return nil, fmt.Errorf("unexpected extmark tag 0x%x", tag)
		}
		kind, err := c.ReadU32(r)
		if err != nil {
			return nil, err
		}
		n, err := c.ReadU32(r)
		if err != nil {
			return nil, err
		}
		payload, err := c.ReadBytes(r, int(n))
		if err != nil {
			return nil, err
		}
		h.Extmarks = append(h.Extmarks, ExtmarkUndoObject{Kind: kind, Payload: payload})
	}

	return h, nil
}

// installFrom atomically replaces t's contents with built's. Called
// only after a full successful parse, per §4.4's "free current tree
// and install new one atomically."
func (t *UndoTree) installFrom(built *UndoTree) {
	t.headers = built.headers
	t.walkMarks = built.walkMarks
	t.oldHead = built.oldHead
	t.newHead = built.newHead
	t.curHead = built.curHead
	t.synced = built.synced
	t.numhead = built.numhead
	t.seqLast = built.seqLast
	t.seqCur = built.seqCur
	t.saveNrLast = built.saveNrLast
	t.saveNrCur = built.saveNrCur
	t.timeCur = built.timeCur
	t.linePtr = built.linePtr
	t.lineLnum = built.lineLnum
	t.lineColnr = built.lineColnr
}
