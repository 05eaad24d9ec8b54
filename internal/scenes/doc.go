// Package scenes turns a style identifier and a narration duration into a
// deterministic, contiguous visual effect timeline for the compositor.
package scenes
