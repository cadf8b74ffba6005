package pipeline

import (
	"unicode/utf16"

	"github.com/gogpu/vkd3d-shader/dxbc"
)

// tocEntry is one TOC row (spec §4.8 "each TOC entry is {blob_offset,
// name_length, blob_length}"). blob_offset is relative to the start of
// the blob_bodies section (not documented explicitly in spec.md; chosen
// since the TOC format carries no other anchor point — see DESIGN.md).
type tocEntry struct {
	blobOffset uint64
	nameLength uint32
	blobLength uint32
}

// Serialize builds the monolithic VKL4 TOC blob for everything
// currently held by l (spec §4.8 "Monolithic TOC format", used when the
// application explicitly calls Serialize).
func (l *Library) Serialize() []byte {
	l.mu.RLock()
	l.stores.mu.RLock()
	defer l.stores.mu.RUnlock()
	defer l.mu.RUnlock()

	var spirvEntries, driverEntries, pipelineEntries []tocEntry
	var nameTable, blobBodies []byte

	appendBlob := func(entries *[]tocEntry, body []byte, name []byte, isHash bool, hash uint64) {
		off := uint64(len(blobBodies))
		blobBodies = append(blobBodies, body...)
		for len(blobBodies)%8 != 0 {
			blobBodies = append(blobBodies, 0)
		}
		e := tocEntry{blobOffset: off, blobLength: uint32(len(body))}
		if isHash {
			nameTable = append(nameTable, encodeU64(hash)...)
		} else {
			e.nameLength = uint32(len(name))
			nameTable = append(nameTable, name...)
		}
		*entries = append(*entries, e)
	}

	l.stores.spirvCache.forEach(func(hash uint64, wrapped []byte) {
		appendBlob(&spirvEntries, wrapped, nil, true, hash)
	})
	l.stores.driverCache.forEach(func(hash uint64, wrapped []byte) {
		appendBlob(&driverEntries, wrapped, nil, true, hash)
	})
	for key, e := range l.psoMap {
		if key.IsHash {
			appendBlob(&pipelineEntries, e.blob, nil, true, key.Hash)
		} else {
			name := utf16LEBytes(key.Name)
			appendBlob(&pipelineEntries, e.blob, name, false, 0)
		}
	}

	w := dxbc.NewWriter()
	w.WriteBytes([]byte(tocMagic))
	w.WriteU32(l.cfg.VendorID)
	w.WriteU32(l.cfg.DeviceID)
	w.WriteU32(uint32(len(spirvEntries)))
	w.WriteU32(uint32(len(driverEntries)))
	w.WriteU32(uint32(len(pipelineEntries)))
	w.WriteU64(l.cfg.BuildTag)
	w.WriteU64(l.cfg.ShaderInterfaceKey)
	w.WriteBytes(l.cfg.UUID[:])

	writeEntries := func(entries []tocEntry) {
		for _, e := range entries {
			w.WriteU64(e.blobOffset)
			w.WriteU32(e.nameLength)
			w.WriteU32(e.blobLength)
		}
	}
	writeEntries(spirvEntries)
	writeEntries(driverEntries)
	writeEntries(pipelineEntries)

	w.WriteBytes(nameTable)
	w.Align8()
	w.WriteBytes(blobBodies)
	return w.Bytes()
}

// Deserialize loads a VKL4 TOC blob built by Serialize, installing its
// spirv/driver-cache records into the internal stores and its
// pipelines into pso_map. cfg's vendor/device id, build tag, shader-
// interface key and UUID must match or the load fails (spec §4.8
// "Failure modes").
func Deserialize(data []byte, cfg Config) (*Library, error) {
	r := dxbc.NewReader(data)
	magic, err := r.ReadBytes(4)
	if err != nil || string(magic) != tocMagic {
		return nil, errInvalid("pipeline.Deserialize", "bad magic")
	}
	vendorID, _ := r.ReadU32()
	deviceID, _ := r.ReadU32()
	if vendorID != cfg.VendorID || deviceID != cfg.DeviceID {
		return nil, errAdapterNotFound("pipeline.Deserialize", "vendor/device id mismatch")
	}
	spirvCount, err1 := r.ReadU32()
	driverCount, err2 := r.ReadU32()
	pipelineCount, err3 := r.ReadU32()
	buildTag, err4 := r.ReadU64()
	key, err5 := r.ReadU64()
	uuid, err6 := r.ReadBytes(16)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return nil, errInvalid("pipeline.Deserialize", "truncated header")
	}
	if buildTag != cfg.BuildTag || key != cfg.ShaderInterfaceKey || string(uuid) != string(cfg.UUID[:]) {
		return nil, errDriverMismatch("pipeline.Deserialize", "build tag/shader-interface-key/UUID mismatch")
	}

	readEntries := func(n uint32) ([]tocEntry, error) {
		out := make([]tocEntry, n)
		for i := range out {
			off, e1 := r.ReadU64()
			nameLen, e2 := r.ReadU32()
			blobLen, e3 := r.ReadU32()
			if e1 != nil || e2 != nil || e3 != nil {
				return nil, errInvalid("pipeline.Deserialize", "truncated TOC entry")
			}
			out[i] = tocEntry{blobOffset: off, nameLength: nameLen, blobLength: blobLen}
		}
		return out, nil
	}

	spirvEntries, err := readEntries(spirvCount)
	if err != nil {
		return nil, err
	}
	driverEntries, err := readEntries(driverCount)
	if err != nil {
		return nil, err
	}
	pipelineEntries, err := readEntries(pipelineCount)
	if err != nil {
		return nil, err
	}

	allEntries := append(append(append([]tocEntry{}, spirvEntries...), driverEntries...), pipelineEntries...)
	names := make([][]byte, len(allEntries))
	for i, e := range allEntries {
		if e.nameLength == 0 {
			b, err := r.ReadBytes(8)
			if err != nil {
				return nil, errInvalid("pipeline.Deserialize", "truncated name table")
			}
			names[i] = b
		} else {
			b, err := r.ReadBytes(e.nameLength)
			if err != nil {
				return nil, errInvalid("pipeline.Deserialize", "truncated name table")
			}
			names[i] = b
		}
	}

	padTo8(r)
	bodiesStart := r.Offset()
	bodies := data[bodiesStart:]

	lib := NewLibrary(cfg)
	blobAt := func(e tocEntry) ([]byte, error) {
		if uint64(len(bodies)) < e.blobOffset+uint64(e.blobLength) {
			return nil, errInvalid("pipeline.Deserialize", "blob body out of range")
		}
		return bodies[e.blobOffset : e.blobOffset+uint64(e.blobLength)], nil
	}

	for i, e := range spirvEntries {
		body, err := blobAt(e)
		if err != nil {
			return nil, err
		}
		lib.stores.spirvCache.insertWrapped(decodeU64(names[i]), body)
	}
	for i, e := range driverEntries {
		idx := len(spirvEntries) + i
		body, err := blobAt(e)
		if err != nil {
			return nil, err
		}
		lib.stores.driverCache.insertWrapped(decodeU64(names[idx]), body)
	}
	for i, e := range pipelineEntries {
		idx := len(spirvEntries) + len(driverEntries) + i
		body, err := blobAt(e)
		if err != nil {
			return nil, err
		}
		var key Key
		if e.nameLength == 0 {
			key = HashKey(decodeU64(names[idx]))
		} else {
			key = NameKey(utf16LEString(names[idx]))
		}
		lib.psoMap[key] = &entry{blob: append([]byte{}, body...)}
	}
	return lib, nil
}

func padTo8(r *dxbc.Reader) {
	for r.Offset()%8 != 0 {
		_, _ = r.ReadBytes(1)
	}
}

func utf16LEBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		out[2*i] = byte(u)
		out[2*i+1] = byte(u >> 8)
	}
	return out
}

func utf16LEString(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	return string(utf16.Decode(units))
}
