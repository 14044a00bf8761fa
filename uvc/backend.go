// Package uvc implements the eds.SDK capability surface on top of a local USB
// (UVC) camera. It is the reference hardware backend: V4L2 controls stand in
// for the vendor's property set, captured frames are spooled to a local
// directory that is exposed as the camera's single volume, and a filesystem
// watcher on the spool provides the file created/removed events.
package uvc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blackjack/webcam"
	"github.com/fsnotify/fsnotify"

	"github.com/rassaifred/EOSFramework/eds"
)

const (
	pixFmtPJPG = 0x47504A50
	pixFmtYUYV = 0x56595559
)

var supportedFormats = map[webcam.PixelFormat]bool{
	pixFmtPJPG: false,
	pixFmtYUYV: true,
}

// Ref is the camera handle this backend answers to.
const Ref eds.CameraRef = 1

// Config selects the video device and the capture spool.
type Config struct {
	Device       string // e.g. /dev/video0
	SpoolDir     string // captured frames land here; doubles as the volume
	PreviewWidth int    // 0 disables preview generation
}

// Backend drives one UVC camera. It implements eds.SDK; construct it with
// New and hand it to camera.New together with Ref.
type Backend struct {
	log *slog.Logger
	cfg Config

	mu      sync.Mutex
	cam     *webcam.Webcam
	open    bool
	cb      eds.Callbacks
	watcher *fsnotify.Watcher
	ctrls   map[eds.PropertyID]webcam.ControlID
	width   int
	height  int

	frameMu sync.RWMutex
	frame   []byte

	fileRefs map[string]eds.FileRef
	nextRef  eds.FileRef

	done chan struct{}
}

// New creates a backend for the configured device. The device is not touched
// until OpenSession.
func New(log *slog.Logger, cfg Config) *Backend {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Device == "" {
		cfg.Device = "/dev/video0"
	}
	return &Backend{
		log:      log.With("svc", "uvc", "device", cfg.Device),
		cfg:      cfg,
		fileRefs: make(map[string]eds.FileRef),
		nextRef:  1,
	}
}

var _ eds.SDK = (*Backend)(nil)

func (b *Backend) OpenSession(camRef eds.CameraRef) eds.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	if camRef != Ref {
		return eds.ErrInvalidHandle
	}
	if b.open {
		return eds.ErrSessionAlreadyOpen
	}

	cam, err := webcam.Open(b.cfg.Device)
	if err != nil {
		b.log.Warn("fail to open device", "err", err)
		return eds.ErrDeviceNotFound
	}

	if err := b.setup(cam); err != nil {
		b.log.Warn("fail to set up device", "err", err)
		cam.Close()
		return eds.ErrDeviceInvalid
	}

	if err := os.MkdirAll(b.cfg.SpoolDir, 0o755); err != nil {
		b.log.Warn("fail to create spool dir", "err", err)
		cam.Close()
		return eds.ErrInternal
	}

	b.cam = cam
	b.open = true
	b.done = make(chan struct{})
	go b.pumpFrames(cam, b.done)
	return eds.OK
}

// setup picks a pixel format and the largest frame size, mirroring what the
// device advertises, and maps the V4L2 controls onto property IDs.
func (b *Backend) setup(cam *webcam.Webcam) error {
	formatDesc := cam.GetSupportedFormats()
	b.log.Debug("supported formats", "formats", formatDesc)

	var format webcam.PixelFormat
	for f := range formatDesc {
		if supportedFormats[f] {
			format = f
			break
		}
	}
	if format == 0 {
		return fmt.Errorf("found no supported formats")
	}

	sizes := frameSizes(cam.GetSupportedFrameSizes(format))
	sort.Sort(sizes)
	if len(sizes) == 0 {
		return fmt.Errorf("found no frame sizes")
	}
	size := sizes[len(sizes)-1]

	_, w, h, err := cam.SetImageFormat(format, size.MaxWidth, size.MaxHeight)
	if err != nil {
		return fmt.Errorf("fail to set image format: %w", err)
	}
	b.width, b.height = int(w), int(h)
	b.log.Info("set image format", "width", w, "height", h)

	if err := cam.StartStreaming(); err != nil {
		return fmt.Errorf("fail to start streaming: %w", err)
	}

	b.ctrls = make(map[eds.PropertyID]webcam.ControlID)
	for id, ctrl := range cam.GetControls() {
		if prop, ok := propertyForControl(ctrl.Name); ok {
			b.ctrls[prop] = id
			b.log.Debug("mapped control", "control", ctrl.Name, "property", uint32(prop))
		}
	}
	return nil
}

func (b *Backend) CloseSession(camRef eds.CameraRef) eds.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return eds.ErrSessionNotOpen
	}

	close(b.done)
	b.stopWatcherLocked()
	b.cam.StopStreaming()
	b.cam.Close()
	b.cam = nil
	b.open = false
	return eds.OK
}

// pumpFrames keeps the latest frame available for capture and watches for the
// device going away.
func (b *Backend) pumpFrames(cam *webcam.Webcam, done chan struct{}) {
	errStreak := 0
	for {
		select {
		case <-done:
			return
		default:
		}

		if err := cam.WaitForFrame(5); err != nil {
			errStreak++
			b.log.Warn("fail to wait for frame", "err", err)
			if errStreak >= 3 {
				b.handleDeviceGone(done)
				return
			}
			continue
		}

		frame, err := cam.ReadFrame()
		if err != nil {
			errStreak++
			b.log.Warn("fail to read frame", "err", err)
			if errStreak >= 3 {
				b.handleDeviceGone(done)
				return
			}
			continue
		}
		errStreak = 0

		b.frameMu.Lock()
		b.frame = frame
		b.frameMu.Unlock()
	}
}

// handleDeviceGone tears the session down and reports the shutdown event,
// matching an unplugged tethered camera.
func (b *Backend) handleDeviceGone(done chan struct{}) {
	b.mu.Lock()
	if !b.open || b.done != done {
		b.mu.Unlock()
		return
	}
	cb := b.cb
	b.stopWatcherLocked()
	b.cam.Close()
	b.cam = nil
	b.open = false
	b.mu.Unlock()

	b.log.Warn("device gone, closing session")
	if cb.State != nil {
		cb.State(eds.StateShutdown, 0)
	}
}

func (b *Backend) GetProperty(camRef eds.CameraRef, prop eds.PropertyID) (eds.PropertyValue, eds.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return eds.PropertyValue{}, eds.ErrSessionNotOpen
	}
	if prop == eds.PropProductName {
		return eds.StringValue("UVC " + b.cfg.Device), eds.OK
	}

	id, ok := b.ctrls[prop]
	if !ok {
		return eds.PropertyValue{}, eds.ErrPropertiesUnavailable
	}
	value, err := b.cam.GetControl(id)
	if err != nil {
		b.log.Warn("fail to get control", "err", err)
		return eds.PropertyValue{}, eds.ErrInternal
	}
	return eds.IntValue(int64(value)), eds.OK
}

func (b *Backend) SetProperty(camRef eds.CameraRef, prop eds.PropertyID, value eds.PropertyValue) eds.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return eds.ErrSessionNotOpen
	}
	id, ok := b.ctrls[prop]
	if !ok {
		return eds.ErrPropertiesUnavailable
	}
	if value.Kind != eds.ValueInt {
		return eds.ErrInvalidParameter
	}
	if err := b.cam.SetControl(id, int32(value.Int)); err != nil {
		// out-of-range writes are the device rejecting the value
		b.log.Debug("control rejected", "err", err)
		return eds.ErrInvalidParameter
	}

	if b.cb.Property != nil {
		// deliver asynchronously like a vendor callback would
		cb := b.cb.Property
		go cb(eds.PropertyChanged, prop)
	}
	return eds.OK
}

func (b *Backend) GetPropertyDesc(camRef eds.CameraRef, prop eds.PropertyID) ([]eds.PropertyValue, eds.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil, eds.ErrSessionNotOpen
	}
	id, ok := b.ctrls[prop]
	if !ok {
		return nil, eds.ErrPropertiesUnavailable
	}

	ctrl, ok := b.cam.GetControls()[id]
	if !ok {
		return nil, eds.ErrPropertiesUnavailable
	}
	return steppedValues(int64(ctrl.Min), int64(ctrl.Max)), eds.OK
}

func (b *Backend) SendCommand(camRef eds.CameraRef, cmd eds.Command, param int64) eds.Code {
	b.mu.Lock()
	if !b.open {
		b.mu.Unlock()
		return eds.ErrSessionNotOpen
	}
	b.mu.Unlock()

	switch cmd {
	case eds.CommandTakePicture:
		return b.takePicture()
	case eds.CommandPressShutterButton:
		switch eds.ShutterButton(param) {
		case eds.ShutterButtonCompletely, eds.ShutterButtonCompletelyNonAF:
			return b.takePicture()
		default:
			// half-press and release have no UVC equivalent
			return eds.OK
		}
	case eds.CommandExtendShutDownTimer:
		return eds.OK
	case eds.CommandBulbStart, eds.CommandBulbEnd:
		return eds.ErrNotSupported
	default:
		return eds.ErrNotSupported
	}
}

func (b *Backend) SendStatusCommand(camRef eds.CameraRef, cmd eds.StatusCommand) eds.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return eds.ErrSessionNotOpen
	}
	// a UVC camera has no lockable UI or transfer mode; transitions succeed
	// so the state layer stays usable against this backend
	return eds.OK
}

func (b *Backend) GetVolumeCount(camRef eds.CameraRef) (int, eds.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return 0, eds.ErrSessionNotOpen
	}
	return 1, eds.OK
}

func (b *Backend) GetVolumeInfo(camRef eds.CameraRef, index int) (eds.VolumeInfo, eds.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return eds.VolumeInfo{}, eds.ErrSessionNotOpen
	}
	if index != 0 {
		return eds.VolumeInfo{}, eds.ErrInvalidIndex
	}

	info := eds.VolumeInfo{Ref: 1, Label: "SPOOL"}
	if capacity, free, err := spoolUsage(b.cfg.SpoolDir); err == nil {
		info.Capacity = capacity
		info.Free = free
	}
	return info, eds.OK
}

func (b *Backend) SetCallbacks(camRef eds.CameraRef, cb eds.Callbacks) eds.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return eds.ErrSessionNotOpen
	}

	b.stopWatcherLocked()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		b.log.Warn("fail to create watcher", "err", err)
		return eds.ErrInternal
	}
	if err := watcher.Add(b.cfg.SpoolDir); err != nil {
		b.log.Warn("fail to watch spool", "err", err)
		watcher.Close()
		return eds.ErrInternal
	}

	b.cb = cb
	b.watcher = watcher
	go b.watchSpool(watcher)
	return eds.OK
}

func (b *Backend) ClearCallbacks(camRef eds.CameraRef) eds.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopWatcherLocked()
	b.cb = eds.Callbacks{}
	return eds.OK
}

func (b *Backend) stopWatcherLocked() {
	if b.watcher != nil {
		b.watcher.Close()
		b.watcher = nil
	}
}

// watchSpool translates filesystem events on the spool into vendor object
// events. Runs until the watcher is closed.
func (b *Backend) watchSpool(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			switch {
			case event.Op.Has(fsnotify.Create):
				b.emitObject(eds.ObjectCreated, event.Name)
			case event.Op.Has(fsnotify.Remove):
				b.emitObject(eds.ObjectRemoved, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			b.log.Warn("watcher error", "err", err)
		}
	}
}

func (b *Backend) emitObject(event eds.ObjectEvent, path string) {
	b.mu.Lock()
	cb := b.cb
	ref, ok := b.fileRefs[path]
	if !ok {
		ref = b.nextRef
		b.nextRef++
		b.fileRefs[path] = ref
	}
	b.mu.Unlock()

	if cb.Object == nil {
		return
	}

	info := eds.FileInfo{Ref: ref, Name: filepath.Base(path)}
	if st, err := os.Stat(path); err == nil {
		info.Size = uint64(st.Size())
		info.IsDir = st.IsDir()
	}
	cb.Object(event, info)
}

// takePicture encodes the latest pumped frame to JPEG and writes it into the
// spool; the watcher turns the write into the file-created event.
func (b *Backend) takePicture() eds.Code {
	b.frameMu.RLock()
	frame := b.frame
	b.frameMu.RUnlock()

	if frame == nil {
		b.log.Warn("no frame available yet")
		return eds.ErrDeviceBusy
	}

	encoded, err := b.encodeToImage(frame)
	if err != nil {
		b.log.Warn("fail to encode frame", "err", err)
		return eds.ErrInternal
	}

	name := filepath.Join(b.cfg.SpoolDir, fmt.Sprintf("IMG_%d.jpg", time.Now().UnixMicro()))
	if err := os.WriteFile(name, encoded, 0o644); err != nil {
		b.log.Warn("fail to write capture", "err", err)
		return eds.ErrTakePictureCardNG
	}
	b.log.Debug("captured", "file", name)

	if b.cfg.PreviewWidth > 0 {
		if err := writePreview(name, encoded, b.cfg.PreviewWidth); err != nil {
			b.log.Warn("fail to write preview", "err", err)
		}
	}
	return eds.OK
}

func (b *Backend) encodeToImage(frame []byte) ([]byte, error) {
	yuyv := image.NewYCbCr(image.Rect(0, 0, b.width, b.height), image.YCbCrSubsampleRatio422)
	for i := range yuyv.Cb {
		ii := i * 4
		yuyv.Y[i*2] = frame[ii]
		yuyv.Y[i*2+1] = frame[ii+2]
		yuyv.Cb[i] = frame[ii+1]
		yuyv.Cr[i] = frame[ii+3]
	}

	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, yuyv, nil); err != nil {
		return nil, fmt.Errorf("fail to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// propertyForControl maps a V4L2 control name onto the nearest property ID.
func propertyForControl(name string) (eds.PropertyID, bool) {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "gain"):
		return eds.PropISO, true
	case strings.Contains(name, "exposure") && strings.Contains(name, "absolute"):
		return eds.PropShutterSpeed, true
	case strings.Contains(name, "iris") || strings.Contains(name, "aperture"):
		return eds.PropAperture, true
	case strings.Contains(name, "white balance temperature") && !strings.Contains(name, "auto"):
		return eds.PropWhiteBalance, true
	case strings.Contains(name, "brightness"):
		return eds.PropExposureComp, true
	default:
		return 0, false
	}
}

// steppedValues turns a control range into a bounded supported-value list.
func steppedValues(min, max int64) []eds.PropertyValue {
	if max < min {
		return nil
	}

	const maxEntries = 16
	step := (max - min) / (maxEntries - 1)
	if step < 1 {
		step = 1
	}

	var values []eds.PropertyValue
	for v := min; v < max; v += step {
		values = append(values, eds.IntValue(v))
	}
	return append(values, eds.IntValue(max))
}

type frameSizes []webcam.FrameSize

func (slice frameSizes) Len() int { return len(slice) }

func (slice frameSizes) Less(i, j int) bool {
	ls := slice[i].MaxWidth * slice[i].MaxHeight
	rs := slice[j].MaxWidth * slice[j].MaxHeight
	return ls < rs
}

func (slice frameSizes) Swap(i, j int) {
	slice[i], slice[j] = slice[j], slice[i]
}
