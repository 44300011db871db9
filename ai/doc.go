// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the model services used by jobtrail.
//
// The pipeline depends only on the interfaces defined here:
//
//   - Embedder turns document and question text into vectors
//   - Classifier scores a batch of messages as job related or not
//   - AttributeExtractor pulls company, position and date out of a message
//   - Generator answers a question from a filled prompt
//
// AIProvider bundles the four services and owns their lifecycle. Concrete
// implementations live in sub-packages: openai talks to any OpenAI-compatible
// server through langchaingo, scorer calls a trained classifier served over
// HTTP, and mock provides deterministic test doubles.
//
// # Configuration
//
// Config is built with functional options on top of DefaultConfig:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithGenerationModel("llama3.1"),
//	    ai.WithClassifierBackend(ai.ClassifierBackendLLM),
//	)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// Validate normalizes hosts (adding the /v1 suffix OpenAI-compatible servers
// expect) before checking required fields.
//
// # Batch Alignment
//
// Classifier.Predict and Embedder.EmbedTexts are positionally aligned with
// their input. Callers assign results back by index and treat a length
// mismatch as an error.
package ai
