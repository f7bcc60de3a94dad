// Package mix provides a numerically controlled oscillator and the complex
// frequency translator built on it.
//
// [Translator] rotates an I/Q stream by a fixed frequency, which moves a
// signal received at an IF offset down to baseband. [Tone] adds a sine tone
// to a real block, used for the receiver beep.
package mix
