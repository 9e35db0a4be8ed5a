// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// Mutex is a Semaphore with a fixed capacity of one permit.
type Mutex struct{ sem *Semaphore }

// NewMutex creates an unlocked mutex.
func NewMutex() *Mutex { return &Mutex{sem: NewSemaphore(1)} }

// Lock acquires the mutex, suspending if it is already held.
func (m *Mutex) Lock() Effect[Never, struct{}] { return m.sem.Acquire() }

// Unlock releases the mutex, waking the longest-waiting queued Lock if
// any.
func (m *Mutex) Unlock() Effect[Never, struct{}] { return m.sem.Release() }

// TryLock acquires the mutex only if it is immediately free.
func (m *Mutex) TryLock() Effect[Never, bool] { return m.sem.TryAcquire() }

// MutexWithPermit holds m for the duration of body, releasing it on
// every exit path. It is a free function rather than a method because
// Go methods cannot introduce a new type parameter.
func MutexWithPermit[A any](m *Mutex, body Effect[Never, A]) Effect[Never, A] {
	return WithPermit(m.sem, body)
}
