package shared

import "strings"

var primitiveDescriptors = map[string]string{
	"boolean": "Z",
	"byte":    "B",
	"char":    "C",
	"short":   "S",
	"int":     "I",
	"long":    "J",
	"float":   "F",
	"double":  "D",
	"void":    "V",
}

var primitiveNames = map[byte]string{
	'Z': "boolean",
	'B': "byte",
	'C': "char",
	'S': "short",
	'I': "int",
	'J': "long",
	'F': "float",
	'D': "double",
	'V': "void",
}

// MapDescriptorClasses rewrites every class reference of a field or
// method descriptor through fn. Malformed input is returned unchanged.
func MapDescriptorClasses(desc string, fn func(string) string) string {
	if desc == "" || !strings.Contains(desc, "L") {
		return desc
	}
	var out strings.Builder
	out.Grow(len(desc))
	for i := 0; i < len(desc); i++ {
		c := desc[i]
		if c != 'L' {
			out.WriteByte(c)
			continue
		}
		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			return desc
		}
		out.WriteByte('L')
		out.WriteString(fn(desc[i+1 : i+end]))
		out.WriteByte(';')
		i += end
	}
	return out.String()
}

// ValidDescriptor reports whether desc follows the bytecode field or
// method descriptor grammar.
func ValidDescriptor(desc string) bool {
	if desc == "" {
		return false
	}
	if desc[0] != '(' {
		n, ok := scanFieldType(desc, 0, false)
		return ok && n == len(desc)
	}
	pos := 1
	for pos < len(desc) && desc[pos] != ')' {
		n, ok := scanFieldType(desc, pos, false)
		if !ok {
			return false
		}
		pos = n
	}
	if pos >= len(desc) {
		return false
	}
	n, ok := scanFieldType(desc, pos+1, true)
	return ok && n == len(desc)
}

func scanFieldType(desc string, pos int, allowVoid bool) (int, bool) {
	for pos < len(desc) && desc[pos] == '[' {
		pos++
		allowVoid = false
	}
	if pos >= len(desc) {
		return pos, false
	}
	switch c := desc[pos]; c {
	case 'L':
		end := strings.IndexByte(desc[pos:], ';')
		if end <= 1 {
			return pos, false
		}
		return pos + end + 1, true
	case 'V':
		return pos + 1, allowVoid
	default:
		_, ok := primitiveNames[c]
		return pos + 1, ok
	}
}

// JavaTypeDescriptor converts a source-level Java type such as
// "int[]" or "net.minecraft.Foo" into its descriptor form.
func JavaTypeDescriptor(javaType string) string {
	name := strings.TrimSpace(javaType)
	dims := 0
	for strings.HasSuffix(name, "[]") {
		dims++
		name = strings.TrimSuffix(name, "[]")
	}
	desc, ok := primitiveDescriptors[name]
	if !ok {
		desc = "L" + NormalizeClassName(name) + ";"
	}
	return strings.Repeat("[", dims) + desc
}

// MethodDescriptor joins source-level parameter and return types into a
// method descriptor.
func MethodDescriptor(params []string, returnType string) string {
	var out strings.Builder
	out.WriteByte('(')
	for _, param := range params {
		if strings.TrimSpace(param) == "" {
			continue
		}
		out.WriteString(JavaTypeDescriptor(param))
	}
	out.WriteByte(')')
	out.WriteString(JavaTypeDescriptor(returnType))
	return out.String()
}

// JavaTypeName renders a field descriptor as a dotted Java type name.
// External reports whether the type lives outside the JDK.
func JavaTypeName(desc string) (name string, external bool) {
	dims := 0
	for dims < len(desc) && desc[dims] == '[' {
		dims++
	}
	base := desc[dims:]
	suffix := strings.Repeat("[]", dims)
	if len(base) == 1 {
		if prim, ok := primitiveNames[base[0]]; ok {
			return prim + suffix, false
		}
	}
	if strings.HasPrefix(base, "L") && strings.HasSuffix(base, ";") {
		className := base[1 : len(base)-1]
		dotted := strings.ReplaceAll(className, "/", ".")
		return dotted + suffix, !strings.HasPrefix(className, "java/")
	}
	return desc, true
}
