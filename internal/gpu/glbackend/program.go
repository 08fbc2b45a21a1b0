package glbackend

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/tphakala/go-nyquist"
	"github.com/tphakala/go-nyquist/internal/gpu"
	"github.com/tphakala/go-nyquist/internal/gpu/shader"
)

// Program is the linked curve shader with its uniform locations.
type Program struct {
	handle             uint32
	matrix             int32
	screen             int32
	width              int32
	color              int32
	coherenceThreshold int32
	coherenceAlpha     int32
}

var _ gpu.Program = (*Program)(nil)

// NewProgram compiles and links the curve shader. On failure the error is
// logged and a program that ignores every call is returned, so the series
// simply does not draw.
func NewProgram() gpu.Program {
	p, err := buildProgram()
	if err != nil {
		nyquist.Logger().Error("nyquist: curve shader unavailable", slog.Any("error", err))
		return gpu.NopProgram{}
	}
	return p
}

func buildProgram() (*Program, error) {
	stages := []struct {
		kind   uint32
		name   string
		source string
	}{
		{gl.VERTEX_SHADER, "vertex", shader.Vertex},
		{gl.GEOMETRY_SHADER, "geometry", shader.Geometry},
		{gl.FRAGMENT_SHADER, "fragment", shader.Fragment},
	}

	shaders := make([]uint32, 0, len(stages))
	defer func() {
		for _, s := range shaders {
			gl.DeleteShader(s)
		}
	}()
	for _, st := range stages {
		s, err := compileShader(st.source, st.kind)
		if err != nil {
			return nil, fmt.Errorf("%s shader: %w", st.name, err)
		}
		shaders = append(shaders, s)
	}

	handle, err := linkProgram(shaders)
	if err != nil {
		return nil, err
	}

	return &Program{
		handle:             handle,
		matrix:             uniformLocation(handle, shader.UniformMatrix),
		screen:             uniformLocation(handle, shader.UniformScreen),
		width:              uniformLocation(handle, shader.UniformWidth),
		color:              uniformLocation(handle, shader.UniformColor),
		coherenceThreshold: uniformLocation(handle, shader.UniformCoherenceThreshold),
		coherenceAlpha:     uniformLocation(handle, shader.UniformCoherenceAlpha),
	}, nil
}

// Use implements gpu.Program.
func (p *Program) Use() {
	gl.UseProgram(p.handle)
}

// Apply implements gpu.Program.
func (p *Program) Apply(u gpu.Uniforms) {
	gl.UniformMatrix4fv(p.matrix, 1, false, &u.Matrix[0])
	gl.Uniform2f(p.screen, u.Screen[0], u.Screen[1])
	gl.Uniform1f(p.width, u.Width)
	gl.Uniform4f(p.color, u.Color[0], u.Color[1], u.Color[2], u.Color[3])
	gl.Uniform1f(p.coherenceThreshold, u.CoherenceThreshold)
	gl.Uniform1f(p.coherenceAlpha, u.CoherenceAlpha)
}

// Delete releases the program object.
func (p *Program) Delete() {
	gl.DeleteProgram(p.handle)
}

func uniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// compileShader compiles a single shader.
func compileShader(source string, shaderType uint32) (uint32, error) {
	id := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, csources, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(id, logLength, nil, gl.Str(log))
		gl.DeleteShader(id)
		return 0, fmt.Errorf("compile failed: %s", strings.TrimRight(log, "\x00"))
	}

	return id, nil
}

// linkProgram links compiled shaders into a program.
func linkProgram(shaders []uint32) (uint32, error) {
	program := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(program, s)
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link failed: %s", strings.TrimRight(log, "\x00"))
	}

	for _, s := range shaders {
		gl.DetachShader(program, s)
	}
	return program, nil
}
