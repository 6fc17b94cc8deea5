package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
)

// wgslVertexFormatMap maps WGSL type names to the vertex formats the engine supports.
var wgslVertexFormatMap = map[string]gpu.VertexFormat{
	"vec2f":     gpu.VertexFormatFloat32x2,
	"vec2<f32>": gpu.VertexFormatFloat32x2,
	"vec3f":     gpu.VertexFormatFloat32x3,
	"vec3<f32>": gpu.VertexFormatFloat32x3,
	"vec4f":     gpu.VertexFormatFloat32x4,
	"vec4<f32>": gpu.VertexFormatFloat32x4,
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(1) @binding(0) var<uniform> camera: CameraUniform;
	// or handle types: @group(0) @binding(0) var t_diffuse: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseVertexInputs collects every @location attribute of the vertex input structs in
// the source. A vertex input struct has at least one @location field and no @builtin
// field, which separates it from the vertex output struct.
//
// Parameters:
//   - source: the processed WGSL source
//
// Returns:
//   - map[uint32]gpu.VertexFormat: attribute formats keyed by shader location
//   - error: error if a location is declared twice or uses an unsupported type
func parseVertexInputs(source string) (map[uint32]gpu.VertexFormat, error) {
	result := make(map[uint32]gpu.VertexFormat)
	for _, ps := range parseStructBlocks(stripComments(source)) {
		if !isVertexInputStruct(ps) {
			continue
		}
		for _, f := range ps.fields {
			format, ok := wgslVertexFormatMap[f.typeName]
			if !ok {
				return nil, fmt.Errorf("%s.%s: unsupported vertex attribute type %q", ps.name, f.name, f.typeName)
			}
			loc := uint32(f.location)
			if _, dup := result[loc]; dup {
				return nil, fmt.Errorf("%s.%s: location %d declared twice", ps.name, f.name, loc)
			}
			result[loc] = format
		}
	}
	return result, nil
}

// parseBindGroupLayouts extracts all @group(N) @binding(M) resource declarations and
// returns them as layout entries grouped by group index and sorted by binding.
//
// Parameters:
//   - source: the processed WGSL source
//   - visibility: the shader stage that declared the bindings
//
// Returns:
//   - map[int][]gpu.BindGroupLayoutEntry: layout entries keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding index
//   - error: error if a binding uses a resource type the engine cannot bind
func parseBindGroupLayouts(source string, visibility gpu.ShaderStage) (map[int][]gpu.BindGroupLayoutEntry, map[int]map[int]string, error) {
	groups := make(map[int][]gpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)

	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(stripComments(source), -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		varName := strings.TrimSpace(match[4])

		kind, err := classifyResource(strings.TrimSpace(match[3]), strings.TrimSpace(match[5]))
		if err != nil {
			return nil, nil, fmt.Errorf("@group(%d) @binding(%d) %s: %w", group, binding, varName, err)
		}
		groups[group] = append(groups[group], gpu.BindGroupLayoutEntry{
			Binding:    uint32(binding),
			Visibility: visibility,
			Type:       kind,
		})

		if varNames[group] == nil {
			varNames[group] = make(map[int]string)
		}
		varNames[group][binding] = varName
	}

	for _, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
	}
	return groups, varNames, nil
}

// classifyResource maps an address space and WGSL type onto a binding type.
func classifyResource(addressSpace, typeName string) (gpu.BindingType, error) {
	switch {
	case addressSpace == "uniform":
		return gpu.BindingTypeUniformBuffer, nil
	case addressSpace != "":
		return 0, fmt.Errorf("unsupported address space %q", addressSpace)
	case typeName == "sampler":
		return gpu.BindingTypeSampler, nil
	case strings.HasPrefix(typeName, "texture_2d<"):
		return gpu.BindingTypeTexture, nil
	}
	return 0, fmt.Errorf("unsupported resource type %q", typeName)
}

// parseEntryPoint extracts the entry point function name for the given shader type.
// Returns an empty string if no matching entry point attribute is found.
//
// Parameters:
//   - source: the WGSL source code string
//   - shaderType: ShaderTypeVertex or ShaderTypeFragment
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, shaderType ShaderType) string {
	cleaned := stripComments(source)

	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields parses the body of a struct block into individual fields
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := parsedField{location: -1}
		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}
	return fields
}

// isVertexInputStruct returns true if the struct has at least one @location field and
// zero @builtin fields.
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// stripComments removes both block and line comments from WGSL source
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

// stripLineComments removes single-line // comments from WGSL source
func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes block comments (/* ... */) from WGSL source,
// handling nested block comments
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	i := 0
	for i < len(source) {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if source[i] == '*' && source[i+1] == '/' {
				if depth > 0 {
					depth--
				}
				i += 2
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
		i++
	}
	return sb.String()
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle brackets.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
