package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/utils"
)

const invalidBodyMessage = "Invalid request body. `tokenType` and `formData` are required."

// ValidateRequest checks req the way the generation endpoint does, so a
// client can reject a form before paying for it. An empty SelectedChain is
// checked against defaultChain.
func ValidateRequest(req *types.GenerationRequest, defaultChain types.Chain) error {
	_, _, err := validateRequest(req, defaultChain)
	return err
}

// validateRequest checks req and returns the decoded token spec and target chain.
func validateRequest(req *types.GenerationRequest, defaultChain types.Chain) (types.TokenSpec, types.Chain, error) {
	if req == nil || req.FormData == nil || req.TokenType == "" {
		return nil, "", invalidRequest(invalidBodyMessage, nil)
	}

	if !req.TokenType.IsValid() {
		return nil, "", invalidRequest(fmt.Sprintf("Invalid request body. Unknown tokenType %q.", req.TokenType), nil)
	}

	chain := req.SelectedChain
	if chain == "" {
		chain = defaultChain
	}
	if !chain.IsValid() {
		return nil, "", invalidRequest(fmt.Sprintf("Invalid request body. Unknown selectedChain %q.", chain), nil)
	}

	v := utils.Validator()
	if err := v.Struct(req.FormData); err != nil {
		return nil, "", invalidRequest(describe(err), err)
	}
	if req.TokenType == types.TokenTypeLiquidityGenerator {
		if err := v.Struct(req.FormData.LiquidityFields()); err != nil {
			return nil, "", invalidRequest(describe(err), err)
		}
	}

	spec, err := types.DecodeTokenSpec(req.TokenType, *req.FormData)
	if err != nil {
		return nil, "", invalidRequest(err.Error(), err)
	}
	return spec, chain, nil
}

func invalidRequest(msg string, cause error) *types.Error {
	return types.NewError(types.ErrCodeInvalidRequest, msg, cause)
}

// describe turns validator errors into one sentence naming the bad fields.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body. " + err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "nonnegdecimal":
			parts = append(parts, field+" must be a non-negative number")
		case "eth_addr":
			parts = append(parts, field+" must be an EVM address")
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return "Invalid request body. " + strings.Join(parts, "; ") + "."
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
