// Package generation wraps the upstream AI providers behind small
// per-modality interfaces: Gemini for chat, Eden AI for images and speech,
// and Veo for video. Handlers depend on the interfaces so provider failures
// and outputs can be simulated in tests.
package generation
