// Package safe wraps gocv.Mat with reference counting and a finalizer so a
// pipeline stage that forgets to Close() a Mat doesn't leak native OpenCV
// memory. This iris pipeline never touches multi-channel pixel access
// (everything past the preprocessor is single-channel grayscale or
// double-precision filter response), so the BGR/BGRA accessors have been
// trimmed and Float64At/SetFloat64At added as CV_64F element accessors.
// The encoder itself keeps its Gabor responses in plain Go arrays, not Mats.
package safe

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"gocv.io/x/gocv"
)

// MemoryTracker lets a Mat report its lifecycle to an external accountant
// without the safe package importing it back (avoids an import cycle).
type MemoryTracker interface {
	TrackAllocation(ptr uintptr, size int64, tag string)
	TrackDeallocation(ptr uintptr, tag string)
}

type Mat struct {
	mat        gocv.Mat
	isValid    int32
	refCount   int32
	mu         sync.RWMutex
	id         uint64
	memTracker MemoryTracker
	tag        string
}

var nextMatID uint64

func NewMat(rows, cols int, matType gocv.MatType) (*Mat, error) {
	return NewMatWithTracker(rows, cols, matType, nil, "")
}

func NewMatWithTracker(rows, cols int, matType gocv.MatType, memTracker MemoryTracker, tag string) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", cols, rows)
	}

	mat := gocv.NewMatWithSize(rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create Mat with size %dx%d", cols, rows)
	}

	safeMat := &Mat{
		mat:        mat,
		isValid:    1,
		refCount:   1,
		id:         atomic.AddUint64(&nextMatID, 1),
		memTracker: memTracker,
		tag:        tag,
	}

	if memTracker != nil {
		size := int64(rows * cols * elemSize(matType))
		memTracker.TrackAllocation(uintptr(unsafe.Pointer(&mat)), size, tag)
	}

	runtime.SetFinalizer(safeMat, (*Mat).finalize)
	return safeMat, nil
}

func NewMatFromMat(srcMat gocv.Mat) (*Mat, error) {
	return NewMatFromMatWithTracker(srcMat, nil, "")
}

func NewMatFromMatWithTracker(srcMat gocv.Mat, memTracker MemoryTracker, tag string) (*Mat, error) {
	if srcMat.Empty() {
		return nil, fmt.Errorf("source Mat is empty")
	}
	if srcMat.Rows() <= 0 || srcMat.Cols() <= 0 {
		return nil, fmt.Errorf("source Mat has invalid dimensions: %dx%d", srcMat.Cols(), srcMat.Rows())
	}

	clonedMat := srcMat.Clone()
	if clonedMat.Empty() {
		clonedMat.Close()
		return nil, fmt.Errorf("failed to clone Mat")
	}

	safeMat := &Mat{
		mat:        clonedMat,
		isValid:    1,
		refCount:   1,
		id:         atomic.AddUint64(&nextMatID, 1),
		memTracker: memTracker,
		tag:        tag,
	}

	if memTracker != nil {
		size := int64(srcMat.Rows() * srcMat.Cols() * elemSize(srcMat.Type()))
		memTracker.TrackAllocation(uintptr(unsafe.Pointer(&clonedMat)), size, tag)
	}

	runtime.SetFinalizer(safeMat, (*Mat).finalize)
	return safeMat, nil
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.IsValid() {
		return true
	}
	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Cols()
}

func (sm *Mat) Channels() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Channels()
}

func (sm *Mat) Type() gocv.MatType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.IsValid() {
		return gocv.MatTypeCV8UC1
	}
	return sm.mat.Type()
}

func (sm *Mat) Clone() (*Mat, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.IsValid() {
		return nil, fmt.Errorf("cannot clone invalid Mat")
	}
	if sm.mat.Empty() {
		return nil, fmt.Errorf("cannot clone empty Mat")
	}
	return NewMatFromMatWithTracker(sm.mat, sm.memTracker, sm.tag+"_clone")
}

func (sm *Mat) CopyTo(dst *Mat) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.IsValid() {
		return fmt.Errorf("source Mat is invalid")
	}
	dst.mu.Lock()
	defer dst.mu.Unlock()
	if !dst.IsValid() {
		return fmt.Errorf("destination Mat is invalid")
	}
	if sm.mat.Empty() {
		return fmt.Errorf("source Mat is empty")
	}
	sm.mat.CopyTo(&dst.mat)
	return nil
}

func (sm *Mat) GetUCharAt(row, col int) (uint8, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.IsValid() {
		return 0, fmt.Errorf("Mat is invalid")
	}
	if row < 0 || row >= sm.mat.Rows() || col < 0 || col >= sm.mat.Cols() {
		return 0, fmt.Errorf("coordinates out of bounds: (%d,%d) for size %dx%d", col, row, sm.mat.Cols(), sm.mat.Rows())
	}
	return sm.mat.GetUCharAt(row, col), nil
}

func (sm *Mat) SetUCharAt(row, col int, value uint8) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.IsValid() {
		return fmt.Errorf("Mat is invalid")
	}
	if row < 0 || row >= sm.mat.Rows() || col < 0 || col >= sm.mat.Cols() {
		return fmt.Errorf("coordinates out of bounds: (%d,%d) for size %dx%d", col, row, sm.mat.Cols(), sm.mat.Rows())
	}
	sm.mat.SetUCharAt(row, col, value)
	return nil
}

// Float64At reads a CV_64F element.
func (sm *Mat) Float64At(row, col int) (float64, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.IsValid() {
		return 0, fmt.Errorf("Mat is invalid")
	}
	if row < 0 || row >= sm.mat.Rows() || col < 0 || col >= sm.mat.Cols() {
		return 0, fmt.Errorf("coordinates out of bounds: (%d,%d) for size %dx%d", col, row, sm.mat.Cols(), sm.mat.Rows())
	}
	return sm.mat.GetDoubleAt(row, col), nil
}

func (sm *Mat) SetFloat64At(row, col int, value float64) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.IsValid() {
		return fmt.Errorf("Mat is invalid")
	}
	if row < 0 || row >= sm.mat.Rows() || col < 0 || col >= sm.mat.Cols() {
		return fmt.Errorf("coordinates out of bounds: (%d,%d) for size %dx%d", col, row, sm.mat.Cols(), sm.mat.Rows())
	}
	sm.mat.SetDoubleAt(row, col, value)
	return nil
}

func (sm *Mat) GetMat() gocv.Mat {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.mat
}

func (sm *Mat) ID() uint64 {
	return sm.id
}

func (sm *Mat) AddRef() {
	atomic.AddInt32(&sm.refCount, 1)
}

// Release decrements the reference count and closes the Mat once it drops
// to zero, for a Mat that has more than one logical owner (see AddRef).
// Call sites in this module own their Mats outright and call Close
// directly; burst buffer frames hold plain Go images, not Mats.
func (sm *Mat) Release() {
	if atomic.AddInt32(&sm.refCount, -1) == 0 {
		sm.Close()
	}
}

func (sm *Mat) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		if sm.memTracker != nil {
			sm.memTracker.TrackDeallocation(uintptr(unsafe.Pointer(&sm.mat)), sm.tag)
		}
		if !sm.mat.Empty() {
			sm.mat.Close()
		}
		runtime.SetFinalizer(sm, nil)
	}
}

func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}

func elemSize(matType gocv.MatType) int {
	switch matType {
	case gocv.MatTypeCV8UC1:
		return 1
	case gocv.MatTypeCV8UC3:
		return 3
	case gocv.MatTypeCV8UC4:
		return 4
	case gocv.MatTypeCV32FC1:
		return 4
	case gocv.MatTypeCV64FC1:
		return 8
	default:
		return 1
	}
}
