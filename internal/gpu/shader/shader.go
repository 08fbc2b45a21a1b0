// Package shader holds the GLSL sources of the curve program. The
// geometry stage expands each vertex record into a stroked Catmull-Rom span.
package shader

// Uniform names.
const (
	UniformMatrix             = "matrix"
	UniformScreen             = "screen"
	UniformWidth              = "width"
	UniformColor              = "color"
	UniformCoherenceThreshold = "coherenceThreshold"
	UniformCoherenceAlpha     = "coherenceAlpha"
)

// Uniforms lists every uniform name.
var Uniforms = []string{
	UniformMatrix,
	UniformScreen,
	UniformWidth,
	UniformColor,
	UniformCoherenceThreshold,
	UniformCoherenceAlpha,
}

// Vertex passes the record attributes through.
const Vertex = `#version 410 core
layout(location = 0) in vec4 re;
layout(location = 1) in vec4 im;
layout(location = 2) in vec4 ctrl;

out VS_OUT {
    vec4 re;
    vec4 im;
    float coherence;
} vs;

void main() {
    vs.re = re;
    vs.im = im;
    vs.coherence = ctrl.x;
    gl_Position = vec4(0.0, 0.0, 0.0, 1.0);
}
`

// Geometry expands one record into a triangle strip.
const Geometry = `#version 410 core
// STEPS line pieces per span, two vertices per piece boundary.
#define STEPS 16
layout(points) in;
layout(triangle_strip, max_vertices = 34) out;

in VS_OUT {
    vec4 re;
    vec4 im;
    float coherence;
} gs[];

uniform mat4 matrix;
uniform vec2 screen;
uniform float width;
uniform float coherenceThreshold;
uniform float coherenceAlpha;

out float alpha;

vec2 bezier(vec2 b0, vec2 b1, vec2 b2, vec2 b3, float t) {
    float u = 1.0 - t;
    return u * u * u * b0 + 3.0 * u * u * t * b1 + 3.0 * u * t * t * b2 + t * t * t * b3;
}

vec2 toPixels(vec2 p, vec2 halfScreen) {
    vec4 c = matrix * vec4(p, 0.0, 1.0);
    return c.xy / c.w * halfScreen;
}

void main() {
    vec2 p0 = vec2(gs[0].re.x, gs[0].im.x);
    vec2 p1 = vec2(gs[0].re.y, gs[0].im.y);
    vec2 p2 = vec2(gs[0].re.z, gs[0].im.z);
    vec2 p3 = vec2(gs[0].re.w, gs[0].im.w);

    // Catmull-Rom span p1 -> p2 as a cubic Bezier.
    vec2 b0 = p1;
    vec2 b1 = p1 + (p2 - p0) / 6.0;
    vec2 b2 = p2 - (p3 - p1) / 6.0;
    vec2 b3 = p2;

    float c = gs[0].coherence;
    float a = 1.0;
    if (coherenceThreshold > 0.0 && c < coherenceThreshold) {
        a = mix(1.0, max(c, 0.0) / coherenceThreshold, coherenceAlpha);
    }

    vec2 halfScreen = max(screen, vec2(1.0)) * 0.5;
    vec2 prev = toPixels(b0, halfScreen);
    for (int i = 0; i <= STEPS; ++i) {
        float t = float(i) / float(STEPS);
        vec2 cur = toPixels(bezier(b0, b1, b2, b3, t), halfScreen);
        vec2 next = toPixels(bezier(b0, b1, b2, b3, min(t + 1.0 / float(STEPS), 1.0)), halfScreen);
        vec2 dir = (i == STEPS) ? cur - prev : next - prev;
        if (length(dir) < 1e-6) {
            dir = vec2(1.0, 0.0);
        }
        vec2 n = normalize(vec2(-dir.y, dir.x)) * width * 0.5;

        alpha = a;
        gl_Position = vec4((cur + n) / halfScreen, 0.0, 1.0);
        EmitVertex();
        alpha = a;
        gl_Position = vec4((cur - n) / halfScreen, 0.0, 1.0);
        EmitVertex();
        prev = cur;
    }
    EndPrimitive();
}
`

// Fragment applies the series color and the coherence gate.
const Fragment = `#version 410 core
uniform vec4 color;

in float alpha;
out vec4 fragColor;

void main() {
    fragColor = vec4(color.rgb, color.a * alpha);
}
`
