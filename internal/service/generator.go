package service

import (
	"github.com/genpass/genpass-go/internal/crypto"
	"github.com/genpass/genpass-go/internal/model"
)

// defaultClasses matches the initial state of the generator form.
var defaultClasses = crypto.NewClassSet(crypto.Lowercase, crypto.Digit)

// GeneratorService handles stateless password generation.
type GeneratorService struct {
	src crypto.Source
}

// NewGeneratorService creates a new GeneratorService drawing from src.
func NewGeneratorService(src crypto.Source) *GeneratorService {
	if src == nil {
		src = crypto.CryptoSource{}
	}
	return &GeneratorService{src: src}
}

// Generate produces a password based on the given request.
func (s *GeneratorService) Generate(req model.GenerateRequest) (model.GenerateResponse, error) {
	genReq, err := ResolveRequest(req)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	password, err := crypto.Generate(genReq, s.src)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	return newGenerateResponse(password, crypto.Score(password)), nil
}

// Profiles lists the available generation presets.
func (s *GeneratorService) Profiles() []model.ProfileResponse {
	presets := crypto.Profiles()
	out := make([]model.ProfileResponse, 0, len(presets))
	for _, p := range presets {
		resp := model.ProfileResponse{Name: p.Name, Length: p.Length}
		for _, c := range p.Classes.Classes() {
			resp.Classes = append(resp.Classes, c.String())
		}
		out = append(out, resp)
	}
	return out
}

// ResolveRequest layers explicit fields over the named profile (or the
// defaults) and checks the result. An empty class selection is reported
// as crypto.ErrEmptyAlphabet before the length bounds are checked.
func ResolveRequest(req model.GenerateRequest) (crypto.GenerationRequest, error) {
	out := crypto.GenerationRequest{Length: crypto.DefaultLength, Classes: defaultClasses}

	if req.Profile != "" && req.Profile != crypto.ProfileCustom {
		p, err := crypto.LookupProfile(req.Profile)
		if err != nil {
			return crypto.GenerationRequest{}, err
		}
		out.Length = p.Length
		out.Classes = p.Classes
	}

	if req.Length != 0 {
		out.Length = req.Length
	}

	out.Classes = applyClass(out.Classes, crypto.Lowercase, req.Lowercase)
	out.Classes = applyClass(out.Classes, crypto.Uppercase, req.Uppercase)
	out.Classes = applyClass(out.Classes, crypto.Digit, req.Digits)
	out.Classes = applyClass(out.Classes, crypto.Symbol, req.Symbols)

	if crypto.UnionAlphabet(out.Classes) == "" {
		return crypto.GenerationRequest{}, crypto.ErrEmptyAlphabet
	}
	if err := crypto.ValidateLength(out.Length); err != nil {
		return crypto.GenerationRequest{}, err
	}

	return out, nil
}

// applyClass sets or clears c according to p, leaving set unchanged when p is nil.
func applyClass(set crypto.ClassSet, c crypto.CharacterClass, p *bool) crypto.ClassSet {
	if p == nil {
		return set
	}
	if *p {
		return set.With(c)
	}
	return set.Without(c)
}

func newGenerateResponse(password string, score int) model.GenerateResponse {
	return model.GenerateResponse{
		Password: password,
		Length:   len(password),
		Score:    score,
		MaxScore: crypto.MaxScore,
	}
}
