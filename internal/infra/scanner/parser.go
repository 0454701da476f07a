package scanner

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"toolscout/internal/domain"
)

// Tool contract: a class qualifies when it defines every required
// capability. Optional capabilities are captured when present and
// omitted otherwise. Nothing is ever executed during scanning.
var requiredCapabilities = [...]string{nameMethod, descriptionMethod, executeMethod}

const (
	nameMethod         = "get_name"
	descriptionMethod  = "get_description"
	executeMethod      = "execute"
	inputSchemaMethod  = "get_input_schema"
	outputSchemaMethod = "get_output_schema"
)

// parseFile extracts tool records from one Python source file.
// Tree-sitter is error-tolerant: files with syntax errors still yield
// whatever classes parsed cleanly.
func (s *Scanner) parseFile(ctx context.Context, path string, content []byte) ([]domain.ToolRecord, error) {
	s.mu.Lock()
	tree, err := s.parser.ParseCtx(ctx, nil, content)
	s.mu.Unlock()
	if err != nil {
		return nil, domain.E(domain.CodeParse, "scanner.parse", "tree-sitter parse failed", err)
	}
	defer tree.Close()

	var records []domain.ToolRecord
	walkClasses(tree.RootNode(), func(class *sitter.Node) {
		rec, ok := extractTool(class, content, path)
		if ok {
			records = append(records, rec)
		}
	})
	return records, nil
}

// walkClasses visits every class_definition in the tree, including
// nested ones.
func walkClasses(node *sitter.Node, visit func(*sitter.Node)) {
	if node == nil {
		return
	}
	if node.Type() == "class_definition" {
		visit(node)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkClasses(node.Child(i), visit)
	}
}

// extractTool checks a class against the tool contract and builds its
// record. The class qualifies only when every required capability is
// defined and get_name yields a usable string literal.
func extractTool(class *sitter.Node, content []byte, path string) (domain.ToolRecord, bool) {
	nameNode := class.ChildByFieldName("name")
	body := class.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return domain.ToolRecord{}, false
	}

	methods := classMethods(body, content)
	for _, capability := range requiredCapabilities {
		if _, ok := methods[capability]; !ok {
			return domain.ToolRecord{}, false
		}
	}

	toolName := stringReturn(methods[nameMethod], content)
	if toolName == "" {
		return domain.ToolRecord{}, false
	}

	return domain.ToolRecord{
		Name:         toolName,
		Description:  stringReturn(methods[descriptionMethod], content),
		FilePath:     path,
		ClassName:    nameNode.Content(content),
		SourceCode:   string(content),
		InputSchema:  referenceReturn(methods[inputSchemaMethod], content),
		OutputSchema: referenceReturn(methods[outputSchemaMethod], content),
	}, true
}

// classMethods maps method names to their function_definition nodes,
// looking through decorators.
func classMethods(body *sitter.Node, content []byte) map[string]*sitter.Node {
	methods := make(map[string]*sitter.Node)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		def := body.NamedChild(i)
		if def.Type() == "decorated_definition" {
			def = def.ChildByFieldName("definition")
			if def == nil {
				continue
			}
		}
		if def.Type() != "function_definition" {
			continue
		}
		nameNode := def.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		methods[nameNode.Content(content)] = def
	}
	return methods
}

// stringReturn extracts the string literal returned by a method, or ""
// when the method returns something else.
func stringReturn(method *sitter.Node, content []byte) string {
	value := returnValue(method)
	if value == nil {
		return ""
	}
	switch value.Type() {
	case "string":
		return unquotePython(value.Content(content))
	case "concatenated_string":
		var sb strings.Builder
		for i := 0; i < int(value.NamedChildCount()); i++ {
			part := value.NamedChild(i)
			if part.Type() == "string" {
				sb.WriteString(unquotePython(part.Content(content)))
			}
		}
		return sb.String()
	default:
		return ""
	}
}

// referenceReturn extracts the identifier (schema class) returned by
// an optional capability method.
func referenceReturn(method *sitter.Node, content []byte) string {
	value := returnValue(method)
	if value == nil {
		return ""
	}
	switch value.Type() {
	case "identifier":
		return value.Content(content)
	case "attribute":
		if attr := value.ChildByFieldName("attribute"); attr != nil {
			return attr.Content(content)
		}
	}
	return ""
}

// returnValue finds the first return statement in a method body and
// yields its expression node, looking through parentheses.
func returnValue(method *sitter.Node) *sitter.Node {
	if method == nil {
		return nil
	}
	ret := findReturn(method.ChildByFieldName("body"))
	if ret == nil || ret.NamedChildCount() == 0 {
		return nil
	}
	value := ret.NamedChild(0)
	for value != nil && value.Type() == "parenthesized_expression" {
		value = value.NamedChild(0)
	}
	return value
}

func findReturn(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "return_statement" {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := findReturn(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// unquotePython strips string prefixes (r, b, u, f) and surrounding
// quotes from a Python string literal.
func unquotePython(raw string) string {
	s := strings.TrimLeft(raw, "rRbBuUfF")
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}
