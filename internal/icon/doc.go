// Package icon renders the macOS app icon set: a diagonal gradient clipped to
// a superellipse "squircle", with the first frame of a line-art GIF centred on
// top, written at every size the asset catalog expects along with its
// Contents.json.
package icon
